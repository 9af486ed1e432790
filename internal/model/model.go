package model

import (
	"context"
	"time"
)

// QuestionKind is the answer format of an exam question.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindTrueFalse      QuestionKind = "true-false"
)

// Implicit options of a true-false question.
const (
	AnswerTrue  = "Verdadero"
	AnswerFalse = "Falso"
)

// ExamQuestion is a diagnostic question generated from a learning path.
// RelatedStageTitle and RelatedTopicName point back at the path by exact text.
type ExamQuestion struct {
	ID                string       `json:"id"`
	Text              string       `json:"questionText"`
	Kind              QuestionKind `json:"questionType"`
	Options           []string     `json:"options"`
	CorrectAnswer     string       `json:"correctAnswer"`
	RelatedStageTitle string       `json:"relatedStageTitle"`
	RelatedTopicName  string       `json:"relatedTopicName"`
}

// Choices returns the options offered to the user.
func (q ExamQuestion) Choices() []string {
	if q.Kind == KindTrueFalse {
		return []string{AnswerTrue, AnswerFalse}
	}
	return q.Options
}

// ExamSubmission is the raw answer for one question. SelectedAnswer is empty when left blank.
type ExamSubmission struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// UserExamAnswer is a submission scored locally against its question.
type UserExamAnswer struct {
	QuestionID        string `json:"questionId"`
	SelectedAnswer    string `json:"selectedAnswer"`
	IsCorrect         bool   `json:"isCorrect"`
	RelatedStageTitle string `json:"relatedStageTitle"`
	RelatedTopicName  string `json:"relatedTopicName"`
}

// TopicRef identifies a topic of a learning path by stage title and topic name.
type TopicRef struct {
	StageTitle string `json:"stageTitle"`
	TopicName  string `json:"topicName"`
}

// ExamResults is the model's aggregation of a scored exam.
type ExamResults struct {
	ScorePercentage   int        `json:"scorePercentage"`
	FeedbackMessage   string     `json:"feedbackMessage"`
	ValidatedTopics   []TopicRef `json:"validatedTopics"`
	TopicsToReinforce []TopicRef `json:"topicsToReinforce"`
}

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is one entry of the dashboard chat transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	Provider string // gemini or openai
	Model    string
	Lang     string
}

type flowIDCtxKey struct{}

// ContextWithFlowID tags a context with the identifier of the flow it serves.
func ContextWithFlowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, flowIDCtxKey{}, id)
}

// FlowIDFromContext returns the flow identifier, or empty string if not set.
func FlowIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(flowIDCtxKey{}).(string)
	return id
}
