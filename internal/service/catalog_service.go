package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"knowledgebot/internal/model"
	"knowledgebot/internal/repository"
	"knowledgebot/internal/util"
	"knowledgebot/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const catalogCachePrefix = "catalog:"

// CatalogService is the read path of the knowledge base catalog. The
// admin panel that edits this content lives outside this service, so
// listings are cached in redis without invalidation hooks: entries just
// expire.
type CatalogService struct {
	Repo     *repository.CatalogRepository
	Storage  *StorageService
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewCatalogService(repo *repository.CatalogRepository, storage *StorageService, rdb *redis.Client, cacheTTLSeconds int) *CatalogService {
	return &CatalogService{
		Repo:     repo,
		Storage:  storage,
		Redis:    rdb,
		CacheTTL: time.Duration(cacheTTLSeconds) * time.Second,
	}
}

type CategoryPayload struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type ProductPayload struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CategoryID  *uint  `json:"categoryId,omitempty"`
}

func (s *CatalogService) Categories(ctx context.Context, parentID *uint) ([]CategoryPayload, error) {
	key := catalogCachePrefix + "categories:root"
	if parentID != nil {
		key = fmt.Sprintf("%scategories:%d", catalogCachePrefix, *parentID)
	}

	var payloads []CategoryPayload
	if s.cacheGet(ctx, key, &payloads) {
		return payloads, nil
	}

	categories, err := s.Repo.ListCategories(parentID)
	if err != nil {
		return nil, err
	}

	payloads = make([]CategoryPayload, 0, len(categories))
	for _, c := range categories {
		url, err := s.Storage.ResolveURL(ctx, c.ImageURL)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, CategoryPayload{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			ImageURL:    url,
		})
	}

	s.cacheSet(ctx, key, payloads)
	return payloads, nil
}

func (s *CatalogService) Products(ctx context.Context, categoryID uint, page, limit int) ([]ProductPayload, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if _, err := s.Repo.FindCategoryByID(categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrCategoryNotFound
		}
		return nil, 0, err
	}

	type cached struct {
		List  []ProductPayload `json:"list"`
		Total int64            `json:"total"`
	}
	key := fmt.Sprintf("%sproducts:%d:%d:%d", catalogCachePrefix, categoryID, page, limit)

	var entry cached
	if s.cacheGet(ctx, key, &entry) {
		return entry.List, entry.Total, nil
	}

	products, total, err := s.Repo.ListProducts(categoryID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	payloads := make([]ProductPayload, 0, len(products))
	for i := range products {
		p, err := s.productPayload(ctx, &products[i])
		if err != nil {
			return nil, 0, err
		}
		payloads = append(payloads, *p)
	}

	s.cacheSet(ctx, key, cached{List: payloads, Total: total})
	return payloads, total, nil
}

func (s *CatalogService) Product(ctx context.Context, id uint) (*ProductPayload, error) {
	product, err := s.Repo.FindProductByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProductNotFound
		}
		return nil, err
	}
	return s.productPayload(ctx, product)
}

func (s *CatalogService) productPayload(ctx context.Context, p *model.Product) (*ProductPayload, error) {
	url, err := s.Storage.ResolveURL(ctx, p.ImageURL)
	if err != nil {
		return nil, err
	}
	return &ProductPayload{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    url,
		CategoryID:  p.CategoryID,
	}, nil
}

// cacheGet returns true on a hit. Cache failures fall through to the
// database.
func (s *CatalogService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.Redis == nil {
		return false
	}
	val, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, val interface{}) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, data, s.CacheTTL).Err(); err != nil {
		logger.Log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
