package service

import (
	"encoding/json"
	"knowledgebot/internal/model"
)

type AnswerKind string

const (
	AnswerSingle   AnswerKind = "single"
	AnswerMultiple AnswerKind = "multiple"
	AnswerText     AnswerKind = "text"
)

// Answer is the tagged submission variant. Exactly one payload field is
// meaningful, selected by Kind; the scoring engine matches Kind against
// the question's declared type instead of guessing from the payload.
type Answer struct {
	Kind    AnswerKind `json:"kind"`
	Index   int        `json:"index,omitempty"`   // single choice: selected option index
	Indexes []int      `json:"indexes,omitempty"` // multiple choice: selected option indexes
	Text    string     `json:"text,omitempty"`    // free text
}

func SingleChoiceAnswer(index int) Answer {
	return Answer{Kind: AnswerSingle, Index: index}
}

func MultipleChoiceAnswer(indexes ...int) Answer {
	return Answer{Kind: AnswerMultiple, Indexes: indexes}
}

func FreeTextAnswer(text string) Answer {
	return Answer{Kind: AnswerText, Text: text}
}

// KindForQuestion maps a question's declared type to the answer kind it
// accepts.
func KindForQuestion(t model.QuestionType) AnswerKind {
	switch t {
	case model.MultipleChoice:
		return AnswerMultiple
	case model.FreeText:
		return AnswerText
	default:
		return AnswerSingle
	}
}

// AnswerRecord is one answered question inside a session, and the unit
// serialized into Attempt.Answers on completion.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Answer     Answer `json:"answer"`
	IsCorrect  bool   `json:"isCorrect"`
}

func EncodeAnswers(records []AnswerRecord) (string, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func DecodeAnswers(raw string) ([]AnswerRecord, error) {
	if raw == "" {
		return nil, nil
	}
	var records []AnswerRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	return records, nil
}
