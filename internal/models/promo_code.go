package models

import (
	"github.com/google/uuid"
)

// PromoCode is a campaign promo code with its affiliate roster.
// Codes are stored uppercased; roster order is the order affiliates were added.
type PromoCode struct {
	Base
	Code       string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"promo_code"`
	Affiliates []PromoAffiliate `gorm:"foreignKey:PromoCodeID;constraint:OnDelete:CASCADE" json:"details"`
}

// PromoAffiliate is one affiliate attached to a promo code. No two roster
// entries on the same code may share an email or an affiliate username.
type PromoAffiliate struct {
	Base
	PromoCodeID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_promo_affiliates_email,priority:1;uniqueIndex:idx_promo_affiliates_username,priority:1" json:"-"`
	AffiliateUsername  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_promo_affiliates_username,priority:2" json:"affiliate_username"`
	Email              string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_promo_affiliates_email,priority:2" json:"email"`
	DiscountPercentage float64   `gorm:"not null" json:"discount_percentage"`
	Position           int       `gorm:"not null;default:0" json:"-"`
}
