package services

import (
	"fmt"
	"strings"

	"smartgov-backend/models"

	"gorm.io/gorm"
)

// CatalogService is the read side of the scheme catalog. Schemes are
// maintained administratively; request handling only ever reads them.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// List returns schemes newest first, optionally filtered by exact category
// and case-insensitive state substring.
func (s *CatalogService) List(category, state string) ([]models.Scheme, error) {
	q := s.db.Model(&models.Scheme{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if state != "" {
		q = q.Where(`LOWER(applicable_states) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(state))+"%")
	}

	var schemes []models.Scheme
	if err := q.Order("created_at DESC").Find(&schemes).Error; err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}
	return schemes, nil
}

// Get returns one scheme by id.
func (s *CatalogService) Get(id uint) (*models.Scheme, error) {
	var scheme models.Scheme
	if err := s.db.First(&scheme, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: scheme %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &scheme, nil
}
