package model

import "time"

// Attempt is the durable record of one finished quiz. Append-only:
// rows are never updated after creation.
//
// swagger:model Attempt
type Attempt struct {
	UUIDBase
	UserID      uint      `gorm:"index;not null" json:"userId"`
	TestID      string    `gorm:"index;not null" json:"testId"`
	Score       int       `gorm:"not null" json:"score"` // percent, 0-100
	Passed      bool      `gorm:"index" json:"passed"`
	TimeTaken   int       `gorm:"not null" json:"timeTaken"` // seconds
	Answers     string    `gorm:"type:text" json:"-"`        // JSON snapshot of the session answers
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `gorm:"index" json:"completedAt"`
}

func (Attempt) TableName() string {
	return "attempts"
}
