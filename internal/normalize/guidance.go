package normalize

import "github.com/pavelanni/pathfinder/internal/model"

// Fallbacks for guidance fields the model left out.
const (
	FallbackSummary         = "No se pudo generar un resumen."
	FallbackAction          = "Acción no especificada"
	FallbackActionHint      = "🔎 'buscar cómo empezar'"
	FallbackStageTitle      = "Etapa sin título"
	FallbackTopicName       = "Tema sin nombre"
	FallbackTopicDetails    = "Sin detalles."
	FallbackTopicHint       = "🔎 'buscar información adicional'"
	FallbackConceptName     = "Concepto sin nombre"
	FallbackConceptHint     = "🔎 'investigar concepto'"
	FallbackCategoryName    = "Categoría General"
	FallbackToolName        = "Herramienta sin nombre"
	FallbackToolDescription = "Sin descripción."
	FallbackToolHint        = "🔎 'tutorial herramienta'"
	FallbackMistake         = "Error no especificado"
	FallbackMistakeTip      = "Sin consejo."
	FallbackMistakeHint     = "🔎 'cómo evitar errores comunes'"
	FallbackChecklistPoint  = "Punto no especificado"
	FallbackChecklistHint   = "🔎 'verificar comprensión'"
	FallbackAIName          = "IA sin nombre"
	FallbackAITask          = "Tarea no especificada."
	FallbackAIHint          = "🔎 'cómo usar esta IA'"
	FallbackPlatformName    = "Plataforma sin nombre"
	FallbackSpecialization  = "Especialización no especificada."
	FallbackPlatformHint    = "🔎 'buscar cursos en plataforma'"
	FallbackFreemiumTip     = "Consultar opciones gratuitas."
	FallbackArea            = "Área no especificada"
	FallbackAreaReason      = "Sin motivo especificado."
	FallbackAreaHint        = "🔎 'explorar nueva área'"
)

// Guidance decodes the main guidance response. The result has no nil slices and
// no empty search hints. Exam results embedded in the payload keep their values;
// only their missing topic lists are filled in.
func Guidance(text string) (*model.GuidancePackage, error) {
	payload, err := parseObject(EntityGuidance, text)
	if err != nil {
		return nil, err
	}
	var pkg model.GuidancePackage
	if err := decode(EntityGuidance, payload, &pkg); err != nil {
		return nil, err
	}

	pkg.Summary = orDefault(pkg.Summary, FallbackSummary)
	pkg.InitialActions = initialActions(pkg.InitialActions)
	pkg.LearningPath = learningPath(pkg.LearningPath)
	pkg.ToolCategories = toolCategories(pkg.ToolCategories)
	pkg.CommonMistakes = commonMistakes(pkg.CommonMistakes)
	pkg.Checklist = checklist(pkg.Checklist)
	pkg.AutomationTools = automationTools(pkg.AutomationTools)
	pkg.CoursePlatforms = model.CoursePlatforms{
		HighDemand: platforms(pkg.CoursePlatforms.HighDemand),
		LowDemand:  platforms(pkg.CoursePlatforms.LowDemand),
	}
	pkg.ExploratoryPaths = exploratoryPaths(pkg.ExploratoryPaths)
	if r := pkg.ExamResults; r != nil {
		if r.ValidatedTopics == nil {
			r.ValidatedTopics = []model.TopicRef{}
		}
		if r.TopicsToReinforce == nil {
			r.TopicsToReinforce = []model.TopicRef{}
		}
	}
	return &pkg, nil
}

func initialActions(in []model.InitialAction) []model.InitialAction {
	out := make([]model.InitialAction, 0, len(in))
	for _, a := range in {
		out = append(out, model.InitialAction{
			Action:     orDefault(a.Action, FallbackAction),
			SearchHint: orDefault(a.SearchHint, FallbackActionHint),
		})
	}
	return out
}

func learningPath(lp model.LearningPath) model.LearningPath {
	return model.LearningPath{
		CriticalPath: stages(lp.CriticalPath),
		ExtendedPath: stages(lp.ExtendedPath),
	}
}

func stages(in []model.Stage) []model.Stage {
	out := make([]model.Stage, 0, len(in))
	for _, s := range in {
		topics := make([]model.Topic, 0, len(s.Topics))
		for _, t := range s.Topics {
			concepts := make([]model.KeyConcept, 0, len(t.KeyConcepts))
			for _, kc := range t.KeyConcepts {
				concepts = append(concepts, model.KeyConcept{
					Name:       orDefault(kc.Name, FallbackConceptName),
					SearchHint: orDefault(kc.SearchHint, FallbackConceptHint),
				})
			}
			topics = append(topics, model.Topic{
				Name:        orDefault(t.Name, FallbackTopicName),
				Details:     orDefault(t.Details, FallbackTopicDetails),
				KeyConcepts: concepts,
				SearchHint:  orDefault(t.SearchHint, FallbackTopicHint),
			})
		}
		out = append(out, model.Stage{
			Title:  orDefault(s.Title, FallbackStageTitle),
			Topics: topics,
		})
	}
	return out
}

func toolCategories(in []model.ToolCategory) []model.ToolCategory {
	out := make([]model.ToolCategory, 0, len(in))
	for _, c := range in {
		tools := make([]model.Tool, 0, len(c.Tools))
		for _, t := range c.Tools {
			tools = append(tools, model.Tool{
				Name:        orDefault(t.Name, FallbackToolName),
				Description: orDefault(t.Description, FallbackToolDescription),
				SearchHint:  orDefault(t.SearchHint, FallbackToolHint),
			})
		}
		out = append(out, model.ToolCategory{
			Name:  orDefault(c.Name, FallbackCategoryName),
			Tools: tools,
		})
	}
	return out
}

func commonMistakes(in []model.CommonMistake) []model.CommonMistake {
	out := make([]model.CommonMistake, 0, len(in))
	for _, m := range in {
		out = append(out, model.CommonMistake{
			Mistake:    orDefault(m.Mistake, FallbackMistake),
			Tip:        orDefault(m.Tip, FallbackMistakeTip),
			SearchHint: orDefault(m.SearchHint, FallbackMistakeHint),
		})
	}
	return out
}

func checklist(in []model.ChecklistItem) []model.ChecklistItem {
	out := make([]model.ChecklistItem, 0, len(in))
	for _, p := range in {
		out = append(out, model.ChecklistItem{
			Point:      orDefault(p.Point, FallbackChecklistPoint),
			SearchHint: orDefault(p.SearchHint, FallbackChecklistHint),
		})
	}
	return out
}

func automationTools(in []model.AutomationTool) []model.AutomationTool {
	out := make([]model.AutomationTool, 0, len(in))
	for _, a := range in {
		out = append(out, model.AutomationTool{
			Name:            orDefault(a.Name, FallbackAIName),
			TaskDescription: orDefault(a.TaskDescription, FallbackAITask),
			SearchHint:      orDefault(a.SearchHint, FallbackAIHint),
		})
	}
	return out
}

// platforms always leaves at least one search hint per platform.
func platforms(in []model.PlatformRecommendation) []model.PlatformRecommendation {
	out := make([]model.PlatformRecommendation, 0, len(in))
	for _, p := range in {
		hints := make([]string, 0, len(p.SearchHints))
		for _, h := range p.SearchHints {
			hints = append(hints, orDefault(h, FallbackPlatformHint))
		}
		if len(hints) == 0 {
			hints = append(hints, FallbackPlatformHint)
		}
		tips := make([]string, 0, len(p.FreemiumTips))
		for _, tip := range p.FreemiumTips {
			tips = append(tips, orDefault(tip, FallbackFreemiumTip))
		}
		out = append(out, model.PlatformRecommendation{
			Name:           orDefault(p.Name, FallbackPlatformName),
			Specialization: orDefault(p.Specialization, FallbackSpecialization),
			SearchHints:    hints,
			FreemiumTips:   tips,
		})
	}
	return out
}

func exploratoryPaths(in []model.ExploratoryPath) []model.ExploratoryPath {
	out := make([]model.ExploratoryPath, 0, len(in))
	for _, p := range in {
		out = append(out, model.ExploratoryPath{
			Area:       orDefault(p.Area, FallbackArea),
			Reason:     orDefault(p.Reason, FallbackAreaReason),
			SearchHint: orDefault(p.SearchHint, FallbackAreaHint),
		})
	}
	return out
}
