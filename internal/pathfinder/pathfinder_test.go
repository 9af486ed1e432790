package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/pathfinder/internal/llm"
	"github.com/pavelanni/pathfinder/internal/llm/prompts"
	"github.com/pavelanni/pathfinder/internal/model"
	"github.com/pavelanni/pathfinder/internal/normalize"
	"github.com/pavelanni/pathfinder/internal/session"
)

const guidanceJSON = `{
	"summary": "Ruta backend",
	"learningPath": {
		"criticalPath": [{"stageTitle": "Fundamentos", "topics": [{"topicName": "Redes"}, {"topicName": "Git"}]}],
		"extendedPath": []
	},
	"recommendedTools": [{"categoryName": "Editores", "tools": [{"toolName": "VS Code"}]}],
	"selfDiagnosisChecklist": [{"point": "Entiendo TCP"}, {"point": "Sé usar Git"}]
}`

// examJSON returns n true-false questions whose correct answer is always Verdadero.
func examJSON(n int) string {
	qs := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, fmt.Sprintf(`{"id": "q%d", "questionText": "Pregunta %d", "questionType": "true-false",
			"correctAnswer": "Verdadero", "relatedStageTitle": "Fundamentos", "relatedTopicName": "Redes"}`, i, i))
	}
	return `{"questions": [` + strings.Join(qs, ",") + `]}`
}

const feedbackJSON = `{"scorePercentage": 70, "feedbackMessage": "Buen avance",
	"validatedTopics": [{"stageTitle": "Fundamentos", "topicName": "Redes"}],
	"topicsToReinforce": [{"stageTitle": "Fundamentos", "topicName": "Git"}]}`

const reportJSON = `{"actionPlan": {"recommendations": ["Practica Git a diario"]}, "finalAdvice": "Sigue así"}`

// scripted replies by flow and counts calls.
type scripted struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   map[string]int
	prompts map[string]string
}

func newScripted() *scripted {
	return &scripted{
		replies: map[string]string{
			llm.FlowGuidance: guidanceJSON,
			llm.FlowExam:     examJSON(10),
			llm.FlowFeedback: feedbackJSON,
			llm.FlowReport:   reportJSON,
			llm.FlowChat:     "Empieza por Redes.",
		},
		errs:    map[string]error{},
		calls:   map[string]int{},
		prompts: map[string]string{},
	}
}

func (s *scripted) Generate(_ context.Context, prompt string, opts llm.Options) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[opts.Flow]++
	s.prompts[opts.Flow] = prompt
	return s.replies[opts.Flow], s.errs[opts.Flow]
}

func (s *scripted) count(flow string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[flow]
}

func newController(t *testing.T, gw llm.Gateway) *Controller {
	t.Helper()
	require.NoError(t, prompts.Load(prompts.FS))
	return New(session.New(), llm.New(gw))
}

func submissions(correct, total int) []model.ExamSubmission {
	subs := make([]model.ExamSubmission, 0, total)
	for i := 1; i <= total; i++ {
		answer := model.AnswerFalse
		if i <= correct {
			answer = model.AnswerTrue
		}
		subs = append(subs, model.ExamSubmission{QuestionID: fmt.Sprintf("q%d", i), SelectedAnswer: answer})
	}
	return subs
}

func TestSearch(t *testing.T) {
	gw := newScripted()
	c := newController(t, gw)

	require.NoError(t, c.Search(context.Background(), "  desarrollador backend  "))
	state := c.State()
	require.NotNil(t, state.Package)
	assert.Equal(t, "Ruta backend", state.Package.Summary)
	assert.Equal(t, "desarrollador backend", state.Query)
	assert.False(t, state.Searching)
	assert.Contains(t, gw.prompts[llm.FlowGuidance], "desarrollador backend")

	assert.ErrorIs(t, c.Search(context.Background(), "   "), ErrEmptyQuery)
	assert.Equal(t, 1, gw.count(llm.FlowGuidance))
}

func TestSearchWithoutKeyFailsFast(t *testing.T) {
	c := newController(t, nil)
	err := c.Search(context.Background(), "analista de datos")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	state := c.State()
	assert.ErrorIs(t, state.Err, llm.ErrNotConfigured)
	assert.Nil(t, state.Package)
	assert.False(t, state.Searching)
}

func TestSearchParseErrorIsRecorded(t *testing.T) {
	gw := newScripted()
	gw.replies[llm.FlowGuidance] = "Claro, aquí tienes tu plan:"
	c := newController(t, gw)

	err := c.Search(context.Background(), "q")
	var pe *normalize.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Nil(t, c.State().Package, "no partial package is stored")
	assert.True(t, errors.As(c.State().Err, &pe))
}

// blockingGateway holds each guidance call until its query is released.
type blockingGateway struct {
	started chan string
	release map[string]chan struct{}
}

func (g *blockingGateway) Generate(ctx context.Context, prompt string, _ llm.Options) (string, error) {
	for query, ch := range g.release {
		if strings.Contains(prompt, "perfil "+query) {
			g.started <- query
			select {
			case <-ch:
				return `{"summary": "` + query + `"}`, nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", errors.New("unexpected prompt")
}

// Overlapping searches are not guarded: whichever completes last wins, even when it
// was started first. This is a known race kept on purpose.
func TestOverlappingSearchesLastWriterWins(t *testing.T) {
	gw := &blockingGateway{
		started: make(chan string),
		release: map[string]chan struct{}{"A": make(chan struct{}), "B": make(chan struct{})},
	}
	c := newController(t, gw)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := map[string]chan error{"A": make(chan error, 1), "B": make(chan error, 1)}
	search := func(query string) {
		go func() { done[query] <- c.Search(ctx, "perfil "+query) }()
		select {
		case got := <-gw.started:
			require.Equal(t, query, got)
		case <-ctx.Done():
			t.Fatalf("search %s never reached the gateway", query)
		}
	}
	search("A")
	search("B")

	close(gw.release["B"])
	require.NoError(t, <-done["B"])
	assert.Equal(t, "B", c.State().Package.Summary)

	close(gw.release["A"])
	require.NoError(t, <-done["A"])
	state := c.State()
	assert.Equal(t, "A", state.Package.Summary, "the stale search overwrote the newer one")
	assert.Equal(t, "perfil B", state.Query, "the query belongs to the newer search")
}

func TestExamFlow(t *testing.T) {
	gw := newScripted()
	c := newController(t, gw)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "desarrollador backend"))

	require.NoError(t, c.StartExam(ctx))
	state := c.State()
	assert.True(t, state.ExamOpen)
	require.Len(t, state.Questions, 10)

	require.NoError(t, c.SubmitExam(ctx, submissions(7, 10)))
	state = c.State()
	assert.False(t, state.ExamOpen)
	assert.Empty(t, state.Questions)
	require.NotNil(t, state.Package.ExamResults)
	assert.Equal(t, 70, state.Package.ExamResults.ScorePercentage)
	assert.Equal(t, []model.TopicRef{{StageTitle: "Fundamentos", TopicName: "Git"}}, state.Package.ExamResults.TopicsToReinforce)

	prompt := gw.prompts[llm.FlowFeedback]
	assert.Equal(t, 7, strings.Count(prompt, `"isCorrect": true`))
	assert.Equal(t, 3, strings.Count(prompt, `"isCorrect": false`))
}

func TestSubmitExamScoresEveryQuestionOnce(t *testing.T) {
	gw := newScripted()
	c := newController(t, gw)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "desarrollador backend"))
	require.NoError(t, c.StartExam(ctx))

	dup := model.ExamSubmission{QuestionID: "q1", SelectedAnswer: model.AnswerTrue}
	require.NoError(t, c.SubmitExam(ctx, []model.ExamSubmission{dup, dup}))

	prompt := gw.prompts[llm.FlowFeedback]
	assert.Equal(t, 10, strings.Count(prompt, `"questionId": "`))
	assert.Equal(t, 1, strings.Count(prompt, `"questionId": "q1"`))
	assert.Contains(t, prompt, `"questionId": "q2"`)
	assert.Equal(t, 1, strings.Count(prompt, `"isCorrect": true`))
	assert.Equal(t, 9, strings.Count(prompt, `"isCorrect": false`))
	assert.Equal(t, 9, strings.Count(prompt, `"selectedAnswer": ""`))
}

func TestSubmitExamShapeRejectionStoresNothing(t *testing.T) {
	gw := newScripted()
	gw.replies[llm.FlowFeedback] = `{"scorePercentage": 70, "feedbackMessage": "Bien", "validatedTopics": []}`
	c := newController(t, gw)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "q"))
	require.NoError(t, c.StartExam(ctx))

	err := c.SubmitExam(ctx, submissions(7, 10))
	var se *normalize.ShapeError
	require.True(t, errors.As(err, &se), "expected ShapeError, got %v", err)

	state := c.State()
	assert.Nil(t, state.Package.ExamResults)
	assert.Empty(t, state.Questions, "the exam ends even when feedback fails")
	assert.False(t, state.ExamOpen)
	assert.True(t, errors.As(state.Err, &se))
}

func TestStartExamFailure(t *testing.T) {
	gw := newScripted()
	gw.errs[llm.FlowExam] = errors.New("503 service unavailable")
	c := newController(t, gw)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "q"))

	err := c.StartExam(ctx)
	assert.True(t, llm.IsGateway(err))
	state := c.State()
	assert.False(t, state.ExamOpen)
	assert.False(t, state.ExamLoading)
	assert.True(t, llm.IsGateway(state.Err))

	var pe *session.PreconditionError
	assert.True(t, errors.As(c.SubmitExam(ctx, nil), &pe))
}

func TestExamRequiresPackage(t *testing.T) {
	gw := newScripted()
	c := newController(t, gw)
	var pe *session.PreconditionError
	assert.True(t, errors.As(c.StartExam(context.Background()), &pe))
	assert.Zero(t, gw.count(llm.FlowExam))
}

func TestGenerateReportWithoutExamResultsDoesNotCallGateway(t *testing.T) {
	gw := newScripted()
	c := newController(t, gw)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "q"))

	err := c.GenerateReport(ctx)
	var pe *session.PreconditionError
	require.True(t, errors.As(err, &pe), "expected PreconditionError, got %v", err)
	assert.Equal(t, session.OpReport, pe.Op)
	assert.Zero(t, gw.count(llm.FlowReport))
	assert.Nil(t, c.State().Report)
}

func TestReportFlow(t *testing.T) {
	gw := newScripted()
	c := newController(t, gw)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "desarrollador backend"))
	require.NoError(t, c.StartExam(ctx))
	require.NoError(t, c.SubmitExam(ctx, submissions(7, 10)))
	done, err := c.ToggleChecklist(1)
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, c.GenerateReport(ctx))
	state := c.State()
	require.NotNil(t, state.Report)
	assert.Equal(t, []string{"Practica Git a diario"}, state.Report.ActionPlan.Recommendations)
	assert.Contains(t, gw.prompts[llm.FlowReport], "Sé usar Git")

	c.FinishReport()
	assert.Nil(t, c.State().Report)
}

func TestToggleChecklistRange(t *testing.T) {
	c := newController(t, newScripted())
	_, err := c.ToggleChecklist(0)
	assert.ErrorIs(t, err, ErrChecklistIndex)

	require.NoError(t, c.Search(context.Background(), "q"))
	for _, index := range []int{-1, 2, 10} {
		_, err := c.ToggleChecklist(index)
		assert.ErrorIs(t, err, ErrChecklistIndex, "index %d", index)
	}
	got, err := c.ToggleChecklist(0)
	require.NoError(t, err)
	assert.True(t, got)
	got, err = c.ToggleChecklist(0)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestChat(t *testing.T) {
	gw := newScripted()
	c := newController(t, gw)
	ctx := context.Background()

	_, err := c.Chat(ctx, "¿por dónde empiezo?")
	var pe *session.PreconditionError
	require.True(t, errors.As(err, &pe))

	require.NoError(t, c.Search(ctx, "desarrollador backend"))
	reply, err := c.Chat(ctx, "¿por dónde empiezo?")
	require.NoError(t, err)
	assert.Equal(t, model.SenderAI, reply.Sender)
	assert.Equal(t, "Empieza por Redes.", reply.Text)
	assert.NotEmpty(t, reply.ID)

	chat := c.State().Chat
	require.Len(t, chat, 2)
	assert.Equal(t, model.SenderUser, chat[0].Sender)
	assert.NotEqual(t, chat[0].ID, chat[1].ID)
	assert.Contains(t, gw.prompts[llm.FlowChat], "Ruta backend", "the dashboard is part of the prompt")

	gw.errs[llm.FlowChat] = errors.New("boom")
	_, err = c.Chat(ctx, "otra pregunta")
	require.Error(t, err)
	c.ChatError("Error: boom")
	chat = c.State().Chat
	require.Len(t, chat, 4)
	assert.Equal(t, "Error: boom", chat[3].Text)
	assert.Nil(t, c.State().Err, "chat failures do not replace the dashboard")

	_, err = c.Chat(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestChatPrefill(t *testing.T) {
	c := newController(t, newScripted())
	c.PrefillChat("  Explícame Git  ")
	assert.Equal(t, "Explícame Git", c.TakeChatPrefill())
	assert.Empty(t, c.TakeChatPrefill())

	c.PrefillChat("Explícame Redes")
	require.NoError(t, c.Search(context.Background(), "q"))
	assert.Empty(t, c.TakeChatPrefill(), "a new search clears the prefill")
}
