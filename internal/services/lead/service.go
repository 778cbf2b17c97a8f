// Package lead captures prospective customers who registered interest via a
// promo code. Conversion is owned by the purchase workflow.
package lead

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/silkloom/backend/internal/apperrors"
	"github.com/silkloom/backend/internal/models"
	"gorm.io/gorm"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Service handles lead capture and listing.
type Service struct {
	db *gorm.DB
}

// NewService creates a lead service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateRequest is a public lead submission.
type CreateRequest struct {
	PromoCode        string `json:"promo_code" binding:"required"`
	CustomerUsername string `json:"customer_username" binding:"required"`
	FullName         string `json:"full_name" binding:"required"`
	Phone            string `json:"phone" binding:"required"`
	Email            string `json:"email" binding:"required"`
}

// Create registers a lead against an existing promo code. A customer may
// register at most once per code.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Lead, error) {
	promoCode := strings.ToUpper(strings.TrimSpace(req.PromoCode))
	customer := strings.ToLower(strings.TrimSpace(req.CustomerUsername))
	fullName := strings.TrimSpace(req.FullName)
	phone := strings.TrimSpace(req.Phone)
	leadEmail := strings.ToLower(strings.TrimSpace(req.Email))

	if promoCode == "" || customer == "" || fullName == "" || phone == "" || leadEmail == "" {
		return nil, apperrors.Validation("promo_code, customer_username, full_name, phone and email are required")
	}
	if !phonePattern.MatchString(phone) {
		return nil, apperrors.Validation("phone must be exactly 10 digits")
	}
	if !emailPattern.MatchString(leadEmail) {
		return nil, apperrors.Validation("invalid email format")
	}

	var promo models.PromoCode
	if err := s.db.WithContext(ctx).Where("code = ?", promoCode).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("invalid promo code")
		}
		return nil, apperrors.Transient("loading promo code failed", err)
	}

	var existing models.Lead
	err := s.db.WithContext(ctx).
		Where("promo_code = ? AND customer_username = ?", promoCode, customer).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("you have already registered with this username for this promo code")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Transient("checking existing lead failed", err)
	}

	lead := models.Lead{
		PromoCode:        promoCode,
		CustomerUsername: customer,
		FullName:         fullName,
		Phone:            phone,
		Email:            leadEmail,
	}
	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, apperrors.Transient("creating lead failed", err)
	}
	return &lead, nil
}

// ListByPromoCode returns all leads for a promo code, newest first.
func (s *Service) ListByPromoCode(ctx context.Context, promoCode string) ([]models.Lead, error) {
	return s.list(ctx, promoCode, false)
}

// ListUnconverted returns only leads that have not yet converted.
func (s *Service) ListUnconverted(ctx context.Context, promoCode string) ([]models.Lead, error) {
	return s.list(ctx, promoCode, true)
}

func (s *Service) list(ctx context.Context, promoCode string, unconvertedOnly bool) ([]models.Lead, error) {
	promoCode = strings.ToUpper(strings.TrimSpace(promoCode))
	if promoCode == "" {
		return nil, apperrors.Validation("promo_code is required")
	}

	query := s.db.WithContext(ctx).Where("promo_code = ?", promoCode)
	if unconvertedOnly {
		query = query.Where("is_converted = ?", false)
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").Find(&leads).Error; err != nil {
		return nil, apperrors.Transient("listing leads failed", err)
	}
	return leads, nil
}
