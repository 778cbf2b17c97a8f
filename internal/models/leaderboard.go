package models

// LeaderboardEntry holds an affiliate's running score breakdown.
// TotalPoints is derived and recomputed on every mutation; the purchase path
// requires the entry to pre-exist and never creates one implicitly.
type LeaderboardEntry struct {
	Base
	AffiliateUsername string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"affiliate_username"`
	FollowersCount    int64   `gorm:"not null;default:0" json:"followers_count"`
	OrderPoints       float64 `gorm:"not null;default:0" json:"order_points"`
	PremiumPoints     float64 `gorm:"not null;default:0" json:"premium_points"`
	ConsistencyPoints float64 `gorm:"not null;default:0" json:"consistency_points"`
	TotalPoints       float64 `gorm:"not null;default:0" json:"total_points"`
}
