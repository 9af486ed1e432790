package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/pavelanni/pathfinder/internal/model"
)

// ExamQuestions decodes a generated exam. The payload is a JSON array of questions;
// an object wrapping the array under "questions" is accepted as well, since some
// backends can only return objects in JSON mode.
func ExamQuestions(text string) ([]model.ExamQuestion, error) {
	payload, first, err := parsePayload(EntityExamQuestions, text)
	if err != nil {
		return nil, err
	}

	var questions []model.ExamQuestion
	switch first {
	case '[':
		if err := decode(EntityExamQuestions, payload, &questions); err != nil {
			return nil, err
		}
	case '{':
		var wrapper struct {
			Questions *[]model.ExamQuestion `json:"questions"`
		}
		if err := decode(EntityExamQuestions, payload, &wrapper); err != nil {
			return nil, err
		}
		if wrapper.Questions == nil {
			return nil, shapeErr(EntityExamQuestions, "expected a JSON array of questions")
		}
		questions = *wrapper.Questions
	default:
		return nil, shapeErr(EntityExamQuestions, "expected a JSON array of questions")
	}

	if len(questions) == 0 {
		return nil, shapeErr(EntityExamQuestions, "no questions")
	}

	seen := make(map[string]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		if err := checkQuestion(i, *q); err != nil {
			return nil, err
		}
		if seen[q.ID] {
			return nil, shapeErr(EntityExamQuestions, fmt.Sprintf("question %d: duplicate id %q", i, q.ID))
		}
		seen[q.ID] = true

		if q.Options == nil || q.Kind == model.KindTrueFalse {
			q.Options = []string{}
		}
		if q.Kind == model.KindMultipleChoice && !slices.Contains(q.Options, q.CorrectAnswer) {
			slog.Warn("correct answer is not among the options", "question_id", q.ID)
		}
	}
	return questions, nil
}

func checkQuestion(i int, q model.ExamQuestion) error {
	required := []struct{ name, value string }{
		{"id", q.ID},
		{"questionText", q.Text},
		{"questionType", string(q.Kind)},
		{"correctAnswer", q.CorrectAnswer},
		{"relatedStageTitle", q.RelatedStageTitle},
		{"relatedTopicName", q.RelatedTopicName},
	}
	for _, f := range required {
		if blank(f.value) {
			return shapeErr(EntityExamQuestions, fmt.Sprintf("question %d: missing %s", i, f.name))
		}
	}
	if q.Kind != model.KindMultipleChoice && q.Kind != model.KindTrueFalse {
		return shapeErr(EntityExamQuestions, fmt.Sprintf("question %d: unknown questionType %q", i, q.Kind))
	}
	return nil
}

type rawTopicRef struct {
	StageTitle *string `json:"stageTitle"`
	TopicName  *string `json:"topicName"`
}

type rawExamResults struct {
	ScorePercentage   *float64       `json:"scorePercentage"`
	FeedbackMessage   *string        `json:"feedbackMessage"`
	ValidatedTopics   *[]rawTopicRef `json:"validatedTopics"`
	TopicsToReinforce *[]rawTopicRef `json:"topicsToReinforce"`
}

// ExamResults validates the model's aggregation of a scored exam. Only the shape is
// checked: a topic listed both as validated and to reinforce is accepted.
func ExamResults(text string) (*model.ExamResults, error) {
	payload, err := parseObject(EntityExamResults, text)
	if err != nil {
		return nil, err
	}
	var raw rawExamResults
	if err := decode(EntityExamResults, payload, &raw); err != nil {
		return nil, err
	}

	if raw.ScorePercentage == nil {
		return nil, shapeErr(EntityExamResults, "scorePercentage is missing")
	}
	score := math.Round(*raw.ScorePercentage)
	if score < 0 || score > 100 {
		return nil, shapeErr(EntityExamResults, fmt.Sprintf("scorePercentage %v out of range", *raw.ScorePercentage))
	}
	if raw.FeedbackMessage == nil || blank(*raw.FeedbackMessage) {
		return nil, shapeErr(EntityExamResults, "feedbackMessage is missing")
	}
	validated, err := topicRefs("validatedTopics", raw.ValidatedTopics)
	if err != nil {
		return nil, err
	}
	reinforce, err := topicRefs("topicsToReinforce", raw.TopicsToReinforce)
	if err != nil {
		return nil, err
	}

	return &model.ExamResults{
		ScorePercentage:   int(score),
		FeedbackMessage:   *raw.FeedbackMessage,
		ValidatedTopics:   validated,
		TopicsToReinforce: reinforce,
	}, nil
}

// topicRefs checks a topic list and drops repeated pairs, keeping first occurrences.
func topicRefs(field string, in *[]rawTopicRef) ([]model.TopicRef, error) {
	if in == nil {
		return nil, shapeErr(EntityExamResults, field+" is missing")
	}
	out := make([]model.TopicRef, 0, len(*in))
	seen := make(map[model.TopicRef]bool, len(*in))
	for i, r := range *in {
		if r.StageTitle == nil || r.TopicName == nil {
			return nil, shapeErr(EntityExamResults, fmt.Sprintf("%s[%d]: stageTitle and topicName are required", field, i))
		}
		ref := model.TopicRef{StageTitle: *r.StageTitle, TopicName: *r.TopicName}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out, nil
}
