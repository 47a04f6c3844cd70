package model

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	FreeText       QuestionType = "free_text"
)

// swagger:model Test
type Test struct {
	UUIDBase
	Title        string `gorm:"size:128;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	PassingScore int    `gorm:"default:70" json:"passingScore"` // minimum percent to pass, 0-100
	TimeLimit    int    `gorm:"default:0" json:"timeLimit"`     // minutes, 0 means no limit
	IsActive     bool   `gorm:"default:true;index" json:"isActive"`
	CreatorID    uint   `gorm:"index" json:"creatorId"`

	Questions []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// swagger:model Question
type Question struct {
	UUIDBase
	TestID string       `gorm:"index;not null" json:"testId"`
	Text   string       `gorm:"type:text;not null" json:"text"`
	Type   QuestionType `gorm:"size:20;default:'single_choice'" json:"type"`
	Order  int          `gorm:"default:0;index" json:"order"`

	// Expected answer for free_text questions, unused for choice questions.
	Answer string `gorm:"type:text" json:"answer,omitempty"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Option
type Option struct {
	UUIDBase
	QuestionID string `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (Option) TableName() string {
	return "options"
}
