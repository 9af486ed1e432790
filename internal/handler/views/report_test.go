package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appI18n "github.com/pavelanni/pathfinder/internal/i18n"
	"github.com/pavelanni/pathfinder/internal/model"
)

func render(t *testing.T, d ReportPageData) string {
	t.Helper()
	require.NoError(t, appI18n.Init("es"))
	var sb strings.Builder
	require.NoError(t, ReportPage(d).Render(context.Background(), &sb))
	return sb.String()
}

func TestReportPage(t *testing.T) {
	path := model.LearningPath{CriticalPath: []model.Stage{{
		Title:  "Fundamentos",
		Topics: []model.Topic{{Name: "Redes", Details: "Modelo OSI & TCP/IP"}},
	}}}
	page := render(t, ReportPageData{
		Profile: "técnico <junior>",
		Path:    path,
		Results: model.ExamResults{
			ScorePercentage:   80,
			FeedbackMessage:   "Bien hecho",
			ValidatedTopics:   []model.TopicRef{{StageTitle: "Fundamentos", TopicName: "Redes"}},
			TopicsToReinforce: []model.TopicRef{{StageTitle: "Otra", TopicName: "Desconocido"}},
		},
		Completed: []model.ChecklistItem{{Point: "Configuro una VLAN"}},
		Report: model.ProgressReportData{
			ActionPlan: model.ActionPlan{
				Recommendations:  []string{"Repasa subredes"},
				StudySuggestions: []model.StudySuggestion{{ResourceType: "Videos", Suggestions: []string{"Curso CCNA"}}},
			},
			WebsiteSuggestions: []model.WebsiteSuggestion{{PlatformName: "Coursera", Reason: "Redes", SearchHint: "🔎 'ccna'"}},
			FinalAdvice:        "Constancia",
		},
		Generated: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
		DonePath:  "/pf/report/done",
		BackPath:  "/pf/",
	})

	assert.Contains(t, page, "técnico &lt;junior&gt;")
	assert.Contains(t, page, "05/03/2026")
	assert.Contains(t, page, "80%")
	assert.Contains(t, page, "Modelo OSI &amp; TCP/IP", "resolved topics show their details")
	assert.Contains(t, page, "Desconocido")
	assert.Equal(t, 1, strings.Count(page, `class="details"`), "unresolved topics have no details")
	assert.Contains(t, page, "Configuro una VLAN")
	assert.Contains(t, page, "Curso CCNA")
	assert.Contains(t, page, "Coursera")
	assert.Contains(t, page, `data-done="/pf/report/done"`)
	assert.Contains(t, page, `data-back="/pf/"`)
	assert.Contains(t, page, "afterprint")
}

func TestReportPageEmptyLists(t *testing.T) {
	page := render(t, ReportPageData{})
	none := appI18n.T(context.Background(), "ReportNone")
	// completed, pending, recommendations and exam tips
	assert.Equal(t, 4, strings.Count(page, "<p>"+none+"</p>"))
	assert.NotContains(t, page, appI18n.T(context.Background(), "ReportWebsites"))
	assert.NotContains(t, page, appI18n.T(context.Background(), "ReportStudy"))
}
