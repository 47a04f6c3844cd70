package repository

import (
	"knowledgebot/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// Create persists a finished attempt. The row is written in a single
// insert so a partially recorded attempt cannot be observed.
func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// History returns a user's attempts newest first. testID narrows the
// listing to one test when non-empty.
func (r *AttemptRepository) History(userID uint, testID string, limit, offset int) ([]model.Attempt, error) {
	var attempts []model.Attempt

	q := r.DB.Where("user_id = ?", userID)
	if testID != "" {
		q = q.Where("test_id = ?", testID)
	}

	err := q.Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByTest(testID string, limit, offset int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("test_id = ?", testID).
		Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	return attempts, err
}

type TestStats struct {
	AttemptCount int64   `json:"attemptCount"`
	PassRate     float64 `json:"passRate"` // percent of attempts that passed
	AverageScore float64 `json:"averageScore"`
	AverageTime  float64 `json:"averageTime"` // seconds
	BestScore    int     `json:"bestScore"`
	WorstScore   int     `json:"worstScore"`
}

// Stats aggregates all attempts of a test. Zero values, not an error,
// when the test has no attempts yet.
func (r *AttemptRepository) Stats(testID string) (*TestStats, error) {
	var stats TestStats

	if err := r.DB.Model(&model.Attempt{}).
		Where("test_id = ?", testID).
		Count(&stats.AttemptCount).Error; err != nil {
		return nil, err
	}

	if stats.AttemptCount == 0 {
		return &stats, nil
	}

	row := r.DB.Model(&model.Attempt{}).
		Where("test_id = ?", testID).
		Select("AVG(score), AVG(time_taken), MAX(score), MIN(score)").
		Row()
	if err := row.Scan(&stats.AverageScore, &stats.AverageTime, &stats.BestScore, &stats.WorstScore); err != nil {
		return nil, err
	}

	var passed int64
	if err := r.DB.Model(&model.Attempt{}).
		Where("test_id = ? AND passed = ?", testID, true).
		Count(&passed).Error; err != nil {
		return nil, err
	}
	stats.PassRate = float64(passed) / float64(stats.AttemptCount) * 100

	return &stats, nil
}
