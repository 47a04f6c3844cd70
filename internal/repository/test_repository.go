package repository

import (
	"knowledgebot/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) FindByID(id string) (*model.Test, error) {
	var t model.Test
	if err := r.DB.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetOrderedQuestions returns the questions of a test sorted by their
// order field ascending, ties broken by id, each with its options in
// option order. The traversal order of a quiz is exactly this sequence.
func (r *TestRepository) GetOrderedQuestions(testID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.`order` ASC, options.id ASC")
		}).
		Where("test_id = ?", testID).
		Order("`order` ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *TestRepository) ListActive(page, limit int) ([]model.Test, int64, error) {
	var tests []model.Test
	var total int64

	q := r.DB.Model(&model.Test{}).Where("is_active = ?", true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tests).Error
	return tests, total, err
}

func (r *TestRepository) CountQuestions(testID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}
