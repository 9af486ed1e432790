// Package exam scores diagnostic exams locally and joins their answers back to
// the learning path they were generated from.
package exam

import (
	"math"

	"github.com/pavelanni/pathfinder/internal/model"
)

// Score marks each submission correct when its answer equals the correct answer of
// the question with the same id, byte for byte. A submission for an unknown question
// is incorrect and carries no stage or topic. The result follows submission order.
func Score(questions []model.ExamQuestion, submissions []model.ExamSubmission) []model.UserExamAnswer {
	byID := make(map[string]model.ExamQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answers := make([]model.UserExamAnswer, 0, len(submissions))
	for _, s := range submissions {
		a := model.UserExamAnswer{
			QuestionID:     s.QuestionID,
			SelectedAnswer: s.SelectedAnswer,
		}
		if q, ok := byID[s.QuestionID]; ok {
			a.IsCorrect = s.SelectedAnswer == q.CorrectAnswer
			a.RelatedStageTitle = q.RelatedStageTitle
			a.RelatedTopicName = q.RelatedTopicName
		}
		answers = append(answers, a)
	}
	return answers
}

// Align returns exactly one submission per question, in question order. The first
// submission for a question id wins; a question with no submission gets an empty
// answer. Submissions for ids outside the question set are dropped.
func Align(questions []model.ExamQuestion, submitted []model.ExamSubmission) []model.ExamSubmission {
	first := make(map[string]string, len(submitted))
	for _, s := range submitted {
		if _, seen := first[s.QuestionID]; !seen {
			first[s.QuestionID] = s.SelectedAnswer
		}
	}
	out := make([]model.ExamSubmission, 0, len(questions))
	for _, q := range questions {
		out = append(out, model.ExamSubmission{QuestionID: q.ID, SelectedAnswer: first[q.ID]})
	}
	return out
}

// Tally counts correct answers and returns the percentage rounded to the nearest integer.
// An empty answer list scores 0.
func Tally(answers []model.UserExamAnswer) (correct, total, percent int) {
	total = len(answers)
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	percent = int(math.Round(float64(correct) * 100 / float64(total)))
	return correct, total, percent
}

// Overlap returns the topics listed both as validated and to reinforce, in
// validated order.
func Overlap(results model.ExamResults) []model.TopicRef {
	reinforce := make(map[model.TopicRef]bool, len(results.TopicsToReinforce))
	for _, r := range results.TopicsToReinforce {
		reinforce[r] = true
	}
	var both []model.TopicRef
	for _, v := range results.ValidatedTopics {
		if reinforce[v] {
			both = append(both, v)
		}
	}
	return both
}

// FindTopic resolves a topic reference against a learning path, searching the
// critical path first. Titles and names match exactly.
func FindTopic(path model.LearningPath, ref model.TopicRef) (model.Stage, model.Topic, bool) {
	for _, stage := range path.Stages() {
		if stage.Title != ref.StageTitle {
			continue
		}
		for _, topic := range stage.Topics {
			if topic.Name == ref.TopicName {
				return stage, topic, true
			}
		}
	}
	return model.Stage{}, model.Topic{}, false
}

// Unresolved returns the references that match no topic of the path.
func Unresolved(path model.LearningPath, refs []model.TopicRef) []model.TopicRef {
	var out []model.TopicRef
	for _, r := range refs {
		if _, _, ok := FindTopic(path, r); !ok {
			out = append(out, r)
		}
	}
	return out
}
