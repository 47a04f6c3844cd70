package service

import (
	"errors"
	"knowledgebot/internal/model"
	"knowledgebot/internal/repository"
	"knowledgebot/internal/util"
	"time"

	"gorm.io/gorm"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

type TelegramIdentity struct {
	TelegramID int64  `json:"telegramId" binding:"required"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// SyncFromTelegram upserts the user the gateway saw in a chat update
// and touches last_activity. Blocked users are rejected so every bot
// flow behind the sync stays closed to them.
func (s *UserService) SyncFromTelegram(identity TelegramIdentity) (*model.User, error) {
	user, err := s.Repo.FindByTelegramID(identity.TelegramID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &model.User{
			TelegramID:   identity.TelegramID,
			Username:     identity.Username,
			FirstName:    identity.FirstName,
			LastName:     identity.LastName,
			LastActivity: time.Now(),
		}
		if err := s.Repo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if user.IsBlocked {
		return nil, util.ErrUserBlocked
	}

	user.Username = identity.Username
	user.FirstName = identity.FirstName
	user.LastName = identity.LastName
	user.LastActivity = time.Now()
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) GetByTelegramID(telegramID int64) (*model.User, error) {
	user, err := s.Repo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if user.IsBlocked {
		return nil, util.ErrUserBlocked
	}
	return user, nil
}

func (s *UserService) LogAction(userID uint, action, details string) {
	// Activity logging is best effort and never blocks a handler.
	go s.Repo.LogActivity(&model.UserActivity{
		UserID:  userID,
		Action:  action,
		Details: details,
	})
}
