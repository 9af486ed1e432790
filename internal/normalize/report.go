package normalize

import "github.com/pavelanni/pathfinder/internal/model"

// Fallbacks for report fields the model left out.
const (
	FallbackResourceType  = "Recursos de estudio"
	FallbackSuggestion    = "Buscar material introductorio sobre el tema."
	FallbackWebsiteName   = "Plataforma sin nombre"
	FallbackWebsiteReason = "Sin motivo especificado."
	FallbackWebsiteHint   = "🔎 'cursos gratuitos en línea'"
	FallbackFinalAdvice   = "Sigue aprendiendo a tu ritmo: la constancia es la clave del progreso."
)

type rawReport struct {
	ActionPlan         *model.ActionPlan         `json:"actionPlan"`
	WebsiteSuggestions []model.WebsiteSuggestion `json:"websiteSuggestions"`
	FinalAdvice        string                    `json:"finalAdvice"`
}

// Report decodes the progress report details. The action plan object is required;
// everything inside it is defaulted.
func Report(text string) (*model.ProgressReportData, error) {
	payload, err := parseObject(EntityReport, text)
	if err != nil {
		return nil, err
	}
	var raw rawReport
	if err := decode(EntityReport, payload, &raw); err != nil {
		return nil, err
	}
	if raw.ActionPlan == nil {
		return nil, shapeErr(EntityReport, "actionPlan is missing")
	}

	plan := model.ActionPlan{
		Recommendations:  nonEmpty(raw.ActionPlan.Recommendations),
		ExamErrorTips:    nonEmpty(raw.ActionPlan.ExamErrorTips),
		StudySuggestions: make([]model.StudySuggestion, 0, len(raw.ActionPlan.StudySuggestions)),
	}
	for _, s := range raw.ActionPlan.StudySuggestions {
		suggestions := make([]string, 0, len(s.Suggestions))
		for _, sug := range s.Suggestions {
			suggestions = append(suggestions, orDefault(sug, FallbackSuggestion))
		}
		plan.StudySuggestions = append(plan.StudySuggestions, model.StudySuggestion{
			ResourceType: orDefault(s.ResourceType, FallbackResourceType),
			Suggestions:  suggestions,
		})
	}

	websites := make([]model.WebsiteSuggestion, 0, len(raw.WebsiteSuggestions))
	for _, w := range raw.WebsiteSuggestions {
		websites = append(websites, model.WebsiteSuggestion{
			PlatformName: orDefault(w.PlatformName, FallbackWebsiteName),
			Reason:       orDefault(w.Reason, FallbackWebsiteReason),
			SearchHint:   orDefault(w.SearchHint, FallbackWebsiteHint),
		})
	}

	return &model.ProgressReportData{
		ActionPlan:         plan,
		WebsiteSuggestions: websites,
		FinalAdvice:        orDefault(raw.FinalAdvice, FallbackFinalAdvice),
	}, nil
}

// nonEmpty drops blank entries and never returns nil.
func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !blank(s) {
			out = append(out, s)
		}
	}
	return out
}
