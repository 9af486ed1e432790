// Package views renders the HTML pages served next to the JSON API.
package views

import (
	"context"
	"time"

	"github.com/pavelanni/pathfinder/internal/exam"
	appI18n "github.com/pavelanni/pathfinder/internal/i18n"
	"github.com/pavelanni/pathfinder/internal/model"
)

// ReportPageData is everything the printable report shows.
type ReportPageData struct {
	Profile   string
	Path      model.LearningPath
	Results   model.ExamResults
	Completed []model.ChecklistItem
	Pending   []model.ChecklistItem
	Report    model.ProgressReportData
	Generated time.Time
	// DonePath receives a POST once the print dialog closes.
	DonePath string
	// BackPath is where the page returns to afterwards.
	BackPath string
}

// topicLine is a topic reference with the details of the topic it resolves to.
type topicLine struct {
	Ref     model.TopicRef
	Details string
}

func topicLines(path model.LearningPath, refs []model.TopicRef) []topicLine {
	lines := make([]topicLine, 0, len(refs))
	for _, ref := range refs {
		line := topicLine{Ref: ref}
		if _, topic, ok := exam.FindTopic(path, ref); ok {
			line.Details = topic.Details
		}
		lines = append(lines, line)
	}
	return lines
}

func points(items []model.ChecklistItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Point)
	}
	return out
}

func t(ctx context.Context, id string) string {
	return appI18n.T(ctx, id)
}

func topicsCount(ctx context.Context, n int) string {
	return "(" + appI18n.Tp(ctx, "TopicsCount", n) + ")"
}

func generatedOn(ctx context.Context, at time.Time) string {
	return appI18n.Td(ctx, "ReportGenerated", map[string]any{"Date": at.Format("02/01/2006")})
}
