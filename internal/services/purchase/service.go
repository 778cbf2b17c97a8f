// Package purchase implements the purchase-completion workflow: one customer
// purchase event drives a single atomic transaction that records the sale,
// notifies every affiliate on the promo code's roster, converts a matching
// lead and updates the leaderboard. A sale is never recorded as "affiliate
// notified" unless a notification attempt actually succeeded, so notification
// delivery is a precondition for commit.
package purchase

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/silkloom/backend/internal/apperrors"
	"github.com/silkloom/backend/internal/cache"
	"github.com/silkloom/backend/internal/models"
	"github.com/silkloom/backend/internal/scoring"
	"github.com/silkloom/backend/internal/services/email"
	"gorm.io/gorm"
)

// Notifier delivers one sale notification with bounded retry.
type Notifier interface {
	NotifySale(toEmail string, n email.SaleNotification) error
}

// Service orchestrates purchase completion and rollback.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	policy   scoring.Policy
	cache    *cache.LeaderboardCache
}

// NewService creates a purchase service. cache may be nil.
func NewService(db *gorm.DB, notifier Notifier, policy scoring.Policy, leaderboardCache *cache.LeaderboardCache) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		policy:   policy,
		cache:    leaderboardCache,
	}
}

// Item is one purchased item in a completion request.
type Item struct {
	ItemID   string `json:"item_id" binding:"required"`
	ItemName string `json:"item_name"`
}

// CompleteRequest is a single customer purchase event.
type CompleteRequest struct {
	PromoCode        string  `json:"promo_code" binding:"required"`
	CustomerUsername string  `json:"customer_username" binding:"required"`
	CustomerPhone    string  `json:"customer_phone" binding:"required"`
	Items            []Item  `json:"items" binding:"required"`
	TotalBill        float64 `json:"total_bill" binding:"required"`
}

// CompleteResult summarizes a committed purchase.
type CompleteResult struct {
	PromoCode          string  `json:"promo_code"`
	CustomerUsername   string  `json:"customer_username"`
	ItemsBought        int     `json:"items_bought"`
	TotalBill          float64 `json:"total_bill"`
	AffiliatesNotified int     `json:"affiliates_notified"`
	LeadConverted      bool    `json:"lead_converted"`
}

// Complete processes one purchase event. Preconditions are checked fail-fast
// before any mutation; the transactional phase then commits everything or
// nothing. The sequential notification fan-out runs inside the transaction
// scope deliberately: a longer lock window is traded for the invariant that a
// committed sale produced a successful notification to each affiliate.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) (*CompleteResult, error) {
	promoCode := strings.ToUpper(strings.TrimSpace(req.PromoCode))
	customer := strings.ToLower(strings.TrimSpace(req.CustomerUsername))
	phone := strings.TrimSpace(req.CustomerPhone)

	if promoCode == "" || customer == "" || phone == "" {
		return nil, apperrors.Validation("promo_code, customer_username and customer_phone are required")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.Validation("items must not be empty")
	}
	if req.TotalBill <= 0 {
		return nil, apperrors.Validation("total_bill must be a positive number")
	}

	itemIDs := make([]string, 0, len(req.Items))
	itemNames := make([]string, 0, len(req.Items))
	seen := make(map[string]struct{}, len(req.Items))
	for _, item := range req.Items {
		id := strings.TrimSpace(item.ItemID)
		if id == "" {
			return nil, apperrors.Validation("every item_id must be non-blank")
		}
		if _, dup := seen[id]; dup {
			return nil, apperrors.Conflict("duplicate item in request: %s", id)
		}
		seen[id] = struct{}{}
		itemIDs = append(itemIDs, id)
		itemNames = append(itemNames, strings.TrimSpace(item.ItemName))
	}

	var promo models.PromoCode
	err := s.db.WithContext(ctx).
		Preload("Affiliates", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("code = ?", promoCode).
		First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("invalid promo code")
		}
		return nil, apperrors.Transient("loading promo code failed", err)
	}
	if len(promo.Affiliates) == 0 {
		return nil, apperrors.NotFound("no affiliate present for this promo code")
	}

	var soldItems []models.CatalogItem
	if err := s.db.WithContext(ctx).Where("item_id IN ?", itemIDs).Find(&soldItems).Error; err != nil {
		return nil, apperrors.Transient("checking sold items failed", err)
	}
	if len(soldItems) > 0 {
		sold := make([]string, 0, len(soldItems))
		for _, item := range soldItems {
			sold = append(sold, item.ItemID)
		}
		return nil, apperrors.Conflict("item already sold: %s", strings.Join(sold, ", "))
	}

	var prior models.Purchase
	err = s.db.WithContext(ctx).
		Where("promo_code = ? AND customer_username = ?", promoCode, customer).
		First(&prior).Error
	if err == nil {
		return nil, apperrors.Conflict("promo already used by this customer")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Transient("checking prior redemption failed", err)
	}

	itemCount := len(itemIDs)
	joinedNames := strings.Join(itemNames, ", ")
	leadConverted := false

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catalogItems := make([]models.CatalogItem, itemCount)
		for i := range itemIDs {
			catalogItems[i] = models.CatalogItem{ItemID: itemIDs[i], ItemName: itemNames[i]}
		}
		if err := tx.Create(&catalogItems).Error; err != nil {
			return apperrors.Transient("recording sold items failed", err)
		}

		purchases := make([]models.Purchase, len(promo.Affiliates))
		for i, affiliate := range promo.Affiliates {
			purchases[i] = models.Purchase{
				PromoCode:         promoCode,
				CustomerUsername:  customer,
				AffiliateUsername: affiliate.AffiliateUsername,
				CustomerPhone:     phone,
				ItemsBought:       itemCount,
				TotalBill:         req.TotalBill,
				// Safe to set up front: the row only survives if every
				// notification below succeeds before commit.
				NotificationSent: true,
			}
		}
		if err := tx.Create(&purchases).Error; err != nil {
			return apperrors.Transient("recording purchase failed", err)
		}

		for _, affiliate := range promo.Affiliates {
			notification := email.SaleNotification{
				PromoCode:          promoCode,
				CustomerUsername:   customer,
				CustomerPhone:      phone,
				ItemsBought:        itemCount,
				ItemNames:          joinedNames,
				TotalBill:          req.TotalBill,
				DiscountPercentage: affiliate.DiscountPercentage,
				AffiliateAmount:    int64(math.Round(req.TotalBill * affiliate.DiscountPercentage / 100)),
			}
			if err := s.notifier.NotifySale(affiliate.Email, notification); err != nil {
				return apperrors.Transient("affiliate notification failed", err)
			}
		}

		now := time.Now()
		res := tx.Model(&models.Lead{}).
			Where("promo_code = ? AND customer_username = ? AND is_converted = ?", promoCode, customer, false).
			Updates(map[string]interface{}{"is_converted": true, "converted_at": now})
		if res.Error != nil {
			return apperrors.Transient("converting lead failed", res.Error)
		}
		leadConverted = res.RowsAffected > 0

		for _, affiliate := range promo.Affiliates {
			if s.policy.IsExcluded(affiliate.AffiliateUsername) {
				continue
			}

			var entry models.LeaderboardEntry
			if err := tx.Where("affiliate_username = ?", affiliate.AffiliateUsername).First(&entry).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Integrity("leaderboard user not found for %s, aborting", affiliate.AffiliateUsername)
				}
				return apperrors.Transient("loading leaderboard entry failed", err)
			}

			s.policy.AwardSale(&entry, itemCount)
			if err := tx.Save(&entry).Error; err != nil {
				return apperrors.Transient("updating leaderboard entry failed", err)
			}
		}

		return nil
	})
	if txErr != nil {
		if apperrors.KindOf(txErr) != "" {
			return nil, txErr
		}
		// Commit conflicts and connectivity failures are retryable from the
		// top by the caller; the store guarantees nothing partial persisted.
		return nil, apperrors.Transient("purchase transaction failed", txErr)
	}

	s.invalidateLeaderboard(ctx)

	return &CompleteResult{
		PromoCode:          promoCode,
		CustomerUsername:   customer,
		ItemsBought:        itemCount,
		TotalBill:          req.TotalBill,
		AffiliatesNotified: len(promo.Affiliates),
		LeadConverted:      leadConverted,
	}, nil
}

// Delete removes a customer's purchase records for a promo code and reverses
// the leaderboard effects for each affected affiliate. The reversal uses each
// affiliate's current follower count and floors every field at zero; the
// whole operation is one transaction.
func (s *Service) Delete(ctx context.Context, promoCode, customerUsername string) error {
	promoCode = strings.ToUpper(strings.TrimSpace(promoCode))
	customer := strings.ToLower(strings.TrimSpace(customerUsername))

	if promoCode == "" || customer == "" {
		return apperrors.Validation("promo_code and customer_username are required")
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledgerCount int64
		if err := tx.Model(&models.Purchase{}).Where("promo_code = ?", promoCode).Count(&ledgerCount).Error; err != nil {
			return apperrors.Transient("loading purchase ledger failed", err)
		}
		if ledgerCount == 0 {
			return apperrors.NotFound("no purchases found for this promo code")
		}

		var purchases []models.Purchase
		if err := tx.Where("promo_code = ? AND customer_username = ?", promoCode, customer).Find(&purchases).Error; err != nil {
			return apperrors.Transient("loading purchase failed", err)
		}
		if len(purchases) == 0 {
			return apperrors.NotFound("purchase not found")
		}

		// Hard delete so the customer can legitimately redeem again after a
		// reversed sale; a soft-deleted row would still hold the unique index.
		if err := tx.Unscoped().Where("promo_code = ? AND customer_username = ?", promoCode, customer).
			Delete(&models.Purchase{}).Error; err != nil {
			return apperrors.Transient("removing purchase failed", err)
		}

		for _, p := range purchases {
			if s.policy.IsExcluded(p.AffiliateUsername) {
				continue
			}

			var entry models.LeaderboardEntry
			err := tx.Where("affiliate_username = ?", p.AffiliateUsername).First(&entry).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Entry was removed since the sale; nothing to reverse.
				continue
			}
			if err != nil {
				return apperrors.Transient("loading leaderboard entry failed", err)
			}

			s.policy.ReverseSale(&entry, p.ItemsBought)
			if err := tx.Save(&entry).Error; err != nil {
				return apperrors.Transient("updating leaderboard entry failed", err)
			}
		}

		return nil
	})
	if txErr != nil {
		if apperrors.KindOf(txErr) != "" {
			return txErr
		}
		return apperrors.Transient("rollback transaction failed", txErr)
	}

	s.invalidateLeaderboard(ctx)
	return nil
}

// ListByPromoCode returns all purchase records for a promo code.
func (s *Service) ListByPromoCode(ctx context.Context, promoCode string) ([]models.Purchase, error) {
	promoCode = strings.ToUpper(strings.TrimSpace(promoCode))
	if promoCode == "" {
		return nil, apperrors.Validation("promo_code is required")
	}

	var purchases []models.Purchase
	if err := s.db.WithContext(ctx).
		Where("promo_code = ?", promoCode).
		Order("created_at ASC").
		Find(&purchases).Error; err != nil {
		return nil, apperrors.Transient("loading purchases failed", err)
	}
	if len(purchases) == 0 {
		return nil, apperrors.NotFound("no purchases found for this promo code")
	}
	return purchases, nil
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("leaderboard cache invalidation failed: %v", err)
	}
}
