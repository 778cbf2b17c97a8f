package models

import "time"

// Lead is a prospective customer who registered interest via a promo code.
// A lead converts at most once, when a matching purchase completes.
type Lead struct {
	Base
	PromoCode        string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_leads_promo_customer,priority:1" json:"promo_code"`
	CustomerUsername string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_leads_promo_customer,priority:2" json:"customer_username"`
	FullName         string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone            string     `gorm:"type:varchar(20);not null" json:"phone"`
	Email            string     `gorm:"type:varchar(255);not null" json:"email"`
	IsConverted      bool       `gorm:"not null;default:false" json:"is_converted"`
	ConvertedAt      *time.Time `json:"converted_at,omitempty"`
}
