package models

// Purchase is one attributed sale record. The purchase path writes one row per
// affiliate on the promo code's roster; the unique index on
// (promo_code, customer_username, affiliate_username) is the idempotency guard
// that keeps a customer from redeeming the same code twice.
type Purchase struct {
	Base
	PromoCode         string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchases_redemption,priority:1;index" json:"promo_code"`
	CustomerUsername  string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_purchases_redemption,priority:2" json:"customer_username"`
	AffiliateUsername string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_purchases_redemption,priority:3;index" json:"affiliate_username"`
	CustomerPhone     string  `gorm:"type:varchar(20);not null" json:"customer_phone"`
	ItemsBought       int     `gorm:"not null" json:"items_bought"`
	TotalBill         float64 `gorm:"not null" json:"total_bill"`
	// NotificationSent is only ever persisted as true: the row commits in the
	// same transaction that requires every affiliate notification to succeed.
	NotificationSent bool `gorm:"not null;default:false" json:"notification_sent"`
}
