// Package pathfinder runs the user-facing flows: each one moves the session through
// its transitions around a single model call.
package pathfinder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/pathfinder/internal/exam"
	"github.com/pavelanni/pathfinder/internal/llm"
	"github.com/pavelanni/pathfinder/internal/model"
	"github.com/pavelanni/pathfinder/internal/session"
)

var (
	// ErrEmptyQuery is returned for a blank search or chat question.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrChecklistIndex is returned when toggling an item the checklist does not have.
	ErrChecklistIndex = session.ErrChecklistIndex
)

// Controller ties the session store to the model client.
type Controller struct {
	store  *session.Store
	client *llm.Client
	now    func() time.Time
}

// New creates a controller.
func New(store *session.Store, client *llm.Client) *Controller {
	return &Controller{store: store, client: client, now: time.Now}
}

// State returns a snapshot of the session.
func (c *Controller) State() session.State {
	return c.store.Snapshot()
}

// Search starts over with a new profile query and stores the resulting guidance.
// The returned error is also recorded in the session.
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}
	ctx, log := startFlow(ctx, llm.FlowGuidance)

	c.store.StartNewSearch(query)
	pkg, err := c.client.GenerateGuidance(ctx, query)
	c.store.CompleteSearch(pkg, err)
	if err != nil {
		log.Warn("search failed", "error", err)
		return err
	}
	log.Info("search completed",
		"critical_stages", len(pkg.LearningPath.CriticalPath),
		"checklist_items", len(pkg.Checklist),
	)
	return nil
}

// StartExam generates a diagnostic exam over the current learning path.
func (c *Controller) StartExam(ctx context.Context) error {
	path, err := c.store.BeginExam()
	if err != nil {
		return err
	}
	ctx, log := startFlow(ctx, llm.FlowExam)

	questions, err := c.client.GenerateExam(ctx, path)
	if err != nil {
		c.store.FailExam(err)
		log.Warn("exam generation failed", "error", err)
		return err
	}
	if unresolved := exam.Unresolved(path, questionTopics(questions)); len(unresolved) > 0 {
		log.Warn("exam questions reference unknown topics", "count", len(unresolved), "topics", unresolved)
	}
	c.store.StartExam(questions)
	log.Info("exam started", "questions", len(questions))
	return nil
}

// CancelExam closes the open exam.
func (c *Controller) CancelExam() {
	c.store.CancelExam()
}

// SubmitExam scores the answers locally, asks the model to aggregate them and merges
// the results into the current package. Every question is scored once: missing
// answers count as blank and repeated ones keep the first. The exam is closed
// whatever the outcome.
func (c *Controller) SubmitExam(ctx context.Context, submissions []model.ExamSubmission) error {
	questions, path, err := c.store.BeginExamSubmit()
	if err != nil {
		return err
	}
	ctx, log := startFlow(ctx, llm.FlowFeedback)

	aligned := exam.Align(questions, submissions)
	if len(aligned) != len(submissions) {
		log.Debug("submissions aligned to questions", "submitted", len(submissions), "questions", len(questions))
	}
	answers := exam.Score(questions, aligned)
	correct, total, percent := exam.Tally(answers)
	log.Debug("exam scored locally", "correct", correct, "total", total, "percent", percent)

	results, err := c.client.GenerateExamFeedback(ctx, path, answers)
	if err != nil {
		c.store.FinishExam(nil, err)
		log.Warn("exam feedback failed", "error", err)
		return err
	}

	// The model owns the aggregation; disagreements are only reported.
	if results.ScorePercentage != percent {
		log.Warn("model score differs from local tally", "model", results.ScorePercentage, "local", percent)
	}
	if both := exam.Overlap(*results); len(both) > 0 {
		log.Warn("topics both validated and to reinforce", "topics", both)
	}
	c.store.FinishExam(results, nil)
	log.Info("exam finished", "score", results.ScorePercentage)
	return nil
}

// ToggleChecklist flips a checklist item of the current package.
func (c *Controller) ToggleChecklist(index int) (bool, error) {
	return c.store.ToggleChecklist(index)
}

// GenerateReport builds the progress report. The model is only called when the
// session has a package with exam results and a checklist.
func (c *Controller) GenerateReport(ctx context.Context) error {
	rc, err := c.store.BeginReport()
	if err != nil {
		return err
	}
	ctx, log := startFlow(ctx, llm.FlowReport)

	data, err := c.client.GenerateReport(ctx, rc)
	c.store.CompleteReport(data, err)
	if err != nil {
		log.Warn("report generation failed", "error", err)
		return err
	}
	log.Info("report ready",
		"completed_items", len(rc.CompletedChecklistItems),
		"pending_items", len(rc.PendingChecklistItems),
	)
	return nil
}

// FinishReport returns to the dashboard after the report was printed.
func (c *Controller) FinishReport() {
	c.store.ReturnToDashboard()
}

// Chat answers a question about the current dashboard. Both the question and the
// answer are added to the transcript; a failed answer leaves only the question.
func (c *Controller) Chat(ctx context.Context, question string) (model.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return model.ChatMessage{}, ErrEmptyQuery
	}
	profile, pkg, err := c.store.BeginChat(c.message(model.SenderUser, question))
	if err != nil {
		return model.ChatMessage{}, err
	}
	ctx, log := startFlow(ctx, llm.FlowChat)

	answer, err := c.client.AnswerChat(ctx, profile, pkg, question)
	if err != nil {
		log.Warn("chat failed", "error", err)
		return model.ChatMessage{}, err
	}
	reply := c.message(model.SenderAI, answer)
	c.store.AppendChat(reply)
	return reply, nil
}

// ChatError adds a model-side message describing a failed answer.
func (c *Controller) ChatError(text string) model.ChatMessage {
	msg := c.message(model.SenderAI, text)
	c.store.AppendChat(msg)
	return msg
}

// PrefillChat stores text to seed the next chat question with.
func (c *Controller) PrefillChat(text string) {
	c.store.SetChatPrefill(strings.TrimSpace(text))
}

// TakeChatPrefill returns and clears the pending prefill.
func (c *Controller) TakeChatPrefill() string {
	return c.store.TakeChatPrefill()
}

func (c *Controller) message(sender model.Sender, text string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: c.now(),
	}
}

// startFlow tags ctx with a fresh flow id and returns a logger carrying it.
func startFlow(ctx context.Context, flow string) (context.Context, *slog.Logger) {
	id := uuid.NewString()
	return model.ContextWithFlowID(ctx, id), slog.With("flow", flow, "flow_id", id)
}

func questionTopics(questions []model.ExamQuestion) []model.TopicRef {
	refs := make([]model.TopicRef, 0, len(questions))
	for _, q := range questions {
		refs = append(refs, model.TopicRef{StageTitle: q.RelatedStageTitle, TopicName: q.RelatedTopicName})
	}
	return refs
}
