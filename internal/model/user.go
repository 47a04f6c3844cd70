package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	TelegramID   int64     `gorm:"uniqueIndex;not null" json:"telegramId"`
	Username     string    `gorm:"size:32" json:"username"`
	FirstName    string    `gorm:"size:64" json:"firstName"`
	LastName     string    `gorm:"size:64" json:"lastName"`
	IsAdmin      bool      `gorm:"default:false" json:"isAdmin"`
	IsBlocked    bool      `gorm:"default:false" json:"isBlocked"`
	LastActivity time.Time `gorm:"index" json:"lastActivity"`

	// Admin console credentials. Empty for regular bot users.
	Email    string `gorm:"size:100;index" json:"email,omitempty"`
	Password string `gorm:"size:100" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// swagger:model UserActivity
type UserActivity struct {
	BaseModel
	UserID  uint   `gorm:"index;not null" json:"userId"`
	Action  string `gorm:"size:32;index" json:"action"`
	Details string `gorm:"type:text" json:"details,omitempty"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}
