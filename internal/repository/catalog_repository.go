package repository

import (
	"knowledgebot/internal/model"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// ListCategories returns active categories, root categories first when
// parentID is nil, otherwise the children of the given category.
func (r *CatalogRepository) ListCategories(parentID *uint) ([]model.Category, error) {
	var categories []model.Category

	q := r.DB.Where("is_active = ?", true)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	err := q.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CatalogRepository) FindCategoryByID(id uint) (*model.Category, error) {
	var c model.Category
	if err := r.DB.Where("is_active = ?", true).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) ListProducts(categoryID uint, page, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.DB.Model(&model.Product{}).
		Where("category_id = ? AND is_active = ?", categoryID, true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	return products, total, err
}

func (r *CatalogRepository) FindProductByID(id uint) (*model.Product, error) {
	var p model.Product
	if err := r.DB.Where("is_active = ?", true).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
