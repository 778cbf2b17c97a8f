// Package catalog exposes read and cleanup operations over sold items. Items
// enter the catalog only through the purchase workflow.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/silkloom/backend/internal/apperrors"
	"github.com/silkloom/backend/internal/models"
	"gorm.io/gorm"
)

// Service answers catalog lookups.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Page is a paginated catalog listing.
type Page struct {
	Data    []models.CatalogItem `json:"data"`
	Offset  int                  `json:"offset"`
	Limit   int                  `json:"limit"`
	Total   int64                `json:"total"`
	HasMore bool                 `json:"has_more"`
}

// Search matches sold items by id or name, case-insensitively.
func (s *Service) Search(ctx context.Context, query string, offset, limit int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("query is required")
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	pattern := "%" + strings.ToUpper(query) + "%"
	base := s.db.WithContext(ctx).Model(&models.CatalogItem{}).
		Where("UPPER(item_id) LIKE ? OR UPPER(item_name) LIKE ?", pattern, pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Transient("counting catalog items failed", err)
	}

	var items []models.CatalogItem
	if err := base.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, apperrors.Transient("searching catalog failed", err)
	}

	return &Page{
		Data:    items,
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+len(items)) < total,
	}, nil
}

// List returns the catalog without a filter, newest first.
func (s *Service) List(ctx context.Context, offset, limit int) (*Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.CatalogItem{}).Count(&total).Error; err != nil {
		return nil, apperrors.Transient("counting catalog items failed", err)
	}

	var items []models.CatalogItem
	if err := s.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, apperrors.Transient("listing catalog failed", err)
	}

	return &Page{
		Data:    items,
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+len(items)) < total,
	}, nil
}

// Get returns a single sold item by its id.
func (s *Service) Get(ctx context.Context, itemID string) (*models.CatalogItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, apperrors.Validation("item_id is required")
	}

	var item models.CatalogItem
	if err := s.db.WithContext(ctx).Where("item_id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("item not found")
		}
		return nil, apperrors.Transient("loading catalog item failed", err)
	}
	return &item, nil
}

// Delete removes an item from the catalog, freeing its id for resale.
func (s *Service) Delete(ctx context.Context, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return apperrors.Validation("item_id is required")
	}

	res := s.db.WithContext(ctx).Unscoped().Where("item_id = ?", itemID).Delete(&models.CatalogItem{})
	if res.Error != nil {
		return apperrors.Transient("deleting catalog item failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("item not found")
	}
	return nil
}
