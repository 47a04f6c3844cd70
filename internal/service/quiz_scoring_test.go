package service

import (
	"errors"
	"knowledgebot/internal/model"
	"knowledgebot/internal/util"
	"testing"
)

func singleChoiceQuestion(id string, correct int, optionCount int) model.Question {
	q := model.Question{
		UUIDBase: model.UUIDBase{ID: id},
		Text:     "q " + id,
		Type:     model.SingleChoice,
	}
	for i := 0; i < optionCount; i++ {
		q.Options = append(q.Options, model.Option{
			Text:      "option",
			IsCorrect: i == correct,
			Order:     i,
		})
	}
	return q
}

func multipleChoiceQuestion(id string, correct []int, optionCount int) model.Question {
	q := model.Question{
		UUIDBase: model.UUIDBase{ID: id},
		Text:     "q " + id,
		Type:     model.MultipleChoice,
	}
	correctSet := make(map[int]bool)
	for _, i := range correct {
		correctSet[i] = true
	}
	for i := 0; i < optionCount; i++ {
		q.Options = append(q.Options, model.Option{
			Text:      "option",
			IsCorrect: correctSet[i],
			Order:     i,
		})
	}
	return q
}

func freeTextQuestion(id, answer string) model.Question {
	return model.Question{
		UUIDBase: model.UUIDBase{ID: id},
		Text:     "q " + id,
		Type:     model.FreeText,
		Answer:   answer,
	}
}

func TestEvaluateAnswerSingleChoice(t *testing.T) {
	q := singleChoiceQuestion("q1", 1, 3)

	tests := []struct {
		name    string
		answer  Answer
		correct bool
	}{
		{"correct option", SingleChoiceAnswer(1), true},
		{"wrong option", SingleChoiceAnswer(0), false},
		{"index out of range", SingleChoiceAnswer(5), false},
		{"negative index", SingleChoiceAnswer(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateAnswer(&q, tt.answer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.correct {
				t.Errorf("got %v, want %v", got, tt.correct)
			}
		})
	}
}

func TestEvaluateAnswerMultipleChoice(t *testing.T) {
	q := multipleChoiceQuestion("q1", []int{0, 2}, 4)

	tests := []struct {
		name    string
		answer  Answer
		correct bool
	}{
		{"exact set", MultipleChoiceAnswer(0, 2), true},
		{"order does not matter", MultipleChoiceAnswer(2, 0), true},
		{"duplicates collapse", MultipleChoiceAnswer(0, 2, 2), true},
		{"subset fails", MultipleChoiceAnswer(0), false},
		{"superset fails", MultipleChoiceAnswer(0, 1, 2), false},
		{"disjoint fails", MultipleChoiceAnswer(1, 3), false},
		{"empty fails", MultipleChoiceAnswer(), false},
		{"out of range fails", MultipleChoiceAnswer(0, 9), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateAnswer(&q, tt.answer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.correct {
				t.Errorf("got %v, want %v", got, tt.correct)
			}
		})
	}
}

func TestEvaluateAnswerFreeText(t *testing.T) {
	q := freeTextQuestion("q1", "Mitochondria")

	tests := []struct {
		name    string
		answer  Answer
		correct bool
	}{
		{"exact", FreeTextAnswer("Mitochondria"), true},
		{"case insensitive", FreeTextAnswer("mitochondria"), true},
		{"trims whitespace", FreeTextAnswer("  mitochondria \n"), true},
		{"wrong text", FreeTextAnswer("ribosome"), false},
		{"empty never matches", FreeTextAnswer(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateAnswer(&q, tt.answer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.correct {
				t.Errorf("got %v, want %v", got, tt.correct)
			}
		})
	}
}

func TestEvaluateAnswerEmptyExpectedText(t *testing.T) {
	q := freeTextQuestion("q1", "   ")
	got, err := EvaluateAnswer(&q, FreeTextAnswer(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("empty submission must not match an empty expected answer")
	}
}

func TestEvaluateAnswerKindMismatch(t *testing.T) {
	q := singleChoiceQuestion("q1", 0, 2)
	if _, err := EvaluateAnswer(&q, FreeTextAnswer("text")); !errors.Is(err, util.ErrInvalidAnswer) {
		t.Errorf("got %v, want ErrInvalidAnswer", err)
	}

	mq := multipleChoiceQuestion("q2", []int{0}, 2)
	if _, err := EvaluateAnswer(&mq, SingleChoiceAnswer(0)); !errors.Is(err, util.ErrInvalidAnswer) {
		t.Errorf("got %v, want ErrInvalidAnswer", err)
	}
}

func scoringFixture(questionCount int) (*model.Test, []model.Question) {
	test := &model.Test{
		UUIDBase:     model.UUIDBase{ID: "test-1"},
		Title:        "fixture",
		PassingScore: 70,
		IsActive:     true,
	}
	var questions []model.Question
	for i := 0; i < questionCount; i++ {
		questions = append(questions, singleChoiceQuestion(questionID(i), 0, 3))
	}
	return test, questions
}

func questionID(i int) string {
	return "q" + string(rune('a'+i))
}

func answersWithCorrect(questions []model.Question, correct int) []AnswerRecord {
	var records []AnswerRecord
	for i, q := range questions {
		answer := SingleChoiceAnswer(1) // wrong
		if i < correct {
			answer = SingleChoiceAnswer(0)
		}
		records = append(records, AnswerRecord{QuestionID: q.ID, Answer: answer})
	}
	return records
}

func TestScoreTest(t *testing.T) {
	tests := []struct {
		name        string
		questions   int
		correct     int
		wantPercent int
		wantPassed  bool
	}{
		{"all correct", 3, 3, 100, true},
		{"two of three rounds up to 67", 3, 2, 67, false},
		{"one of three", 3, 1, 33, false},
		{"none correct", 3, 0, 0, false},
		{"five of six rounds half up", 6, 5, 83, true},
		{"one of six", 6, 1, 17, false},
		{"seven of ten meets passing exactly", 10, 7, 70, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, questions := scoringFixture(tt.questions)
			records := answersWithCorrect(questions, tt.correct)

			score, err := ScoreTest(test, questions, records)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score.Percent != tt.wantPercent {
				t.Errorf("percent = %d, want %d", score.Percent, tt.wantPercent)
			}
			if score.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", score.Passed, tt.wantPassed)
			}
			if score.CorrectCount != tt.correct {
				t.Errorf("correctCount = %d, want %d", score.CorrectCount, tt.correct)
			}
			if score.Total != tt.questions {
				t.Errorf("total = %d, want %d", score.Total, tt.questions)
			}
		})
	}
}

func TestScoreTestNoQuestions(t *testing.T) {
	test := &model.Test{UUIDBase: model.UUIDBase{ID: "t"}, PassingScore: 70}
	if _, err := ScoreTest(test, nil, nil); !errors.Is(err, util.ErrInvalidTest) {
		t.Errorf("got %v, want ErrInvalidTest", err)
	}
}

func TestScoreTestUnknownQuestion(t *testing.T) {
	test, questions := scoringFixture(2)
	records := []AnswerRecord{{QuestionID: "not-in-test", Answer: SingleChoiceAnswer(0)}}
	if _, err := ScoreTest(test, questions, records); !errors.Is(err, util.ErrQuestionMismatch) {
		t.Errorf("got %v, want ErrQuestionMismatch", err)
	}
}

func TestScoreTestDeterministic(t *testing.T) {
	test, questions := scoringFixture(3)
	records := answersWithCorrect(questions, 2)

	first, err := ScoreTest(test, questions, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ScoreTest(test, questions, records)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("run %d: got %+v, want %+v", i, again, first)
		}
	}
}
