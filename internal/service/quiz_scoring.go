package service

import (
	"knowledgebot/internal/model"
	"knowledgebot/internal/util"
	"math"
	"strings"
)

type QuizScore struct {
	Percent      int  `json:"percent"`
	Passed       bool `json:"passed"`
	CorrectCount int  `json:"correctCount"`
	Total        int  `json:"total"`
}

// EvaluateAnswer decides whether an answer is correct for a question.
// Multiple choice is all-or-nothing: the selected set must equal the
// correct set exactly. Free text compares trimmed, case-insensitively.
func EvaluateAnswer(q *model.Question, a Answer) (bool, error) {
	if a.Kind != KindForQuestion(q.Type) {
		return false, util.ErrInvalidAnswer
	}

	switch q.Type {
	case model.SingleChoice:
		if a.Index < 0 || a.Index >= len(q.Options) {
			return false, nil
		}
		return q.Options[a.Index].IsCorrect, nil

	case model.MultipleChoice:
		correct := make(map[int]bool)
		for i, opt := range q.Options {
			if opt.IsCorrect {
				correct[i] = true
			}
		}
		selected := make(map[int]bool)
		for _, i := range a.Indexes {
			if i < 0 || i >= len(q.Options) {
				return false, nil
			}
			selected[i] = true
		}
		if len(selected) != len(correct) {
			return false, nil
		}
		for i := range selected {
			if !correct[i] {
				return false, nil
			}
		}
		return true, nil

	case model.FreeText:
		got := strings.TrimSpace(strings.ToLower(a.Text))
		want := strings.TrimSpace(strings.ToLower(q.Answer))
		return got != "" && got == want, nil
	}

	return false, util.ErrInvalidAnswer
}

// ScoreTest computes the final score of a completed answer set. Pure:
// the same inputs always yield the same result. Correctness is
// re-derived from the selections rather than trusted from the records.
func ScoreTest(test *model.Test, questions []model.Question, answers []AnswerRecord) (QuizScore, error) {
	if len(questions) == 0 {
		return QuizScore{}, util.ErrInvalidTest
	}

	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	correct := 0
	for _, rec := range answers {
		q, ok := byID[rec.QuestionID]
		if !ok {
			return QuizScore{}, util.ErrQuestionMismatch
		}
		ok, err := EvaluateAnswer(q, rec.Answer)
		if err != nil {
			return QuizScore{}, err
		}
		if ok {
			correct++
		}
	}

	percent := roundPercent(correct, len(questions))
	return QuizScore{
		Percent:      percent,
		Passed:       percent >= test.PassingScore,
		CorrectCount: correct,
		Total:        len(questions),
	}, nil
}

// roundPercent rounds half-up to the nearest integer percent.
func roundPercent(correct, total int) int {
	return int(math.Floor(float64(correct)*100/float64(total) + 0.5))
}
