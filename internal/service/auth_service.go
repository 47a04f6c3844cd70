package service

import (
	"errors"
	"knowledgebot/internal/config"
	"knowledgebot/internal/repository"
	"knowledgebot/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService issues JWTs for the admin/reporting console.
type AuthService struct {
	Repo   *repository.UserRepository
	Config *config.Config
}

func NewAuthService(repo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{Repo: repo, Config: cfg}
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.Repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrPermissionDenied
		}
		return "", err
	}

	if !user.IsAdmin || user.IsBlocked {
		return "", util.ErrPermissionDenied
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrPermissionDenied
	}

	return util.GenerateJWT(user.ID, user.Email, user.IsAdmin, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
