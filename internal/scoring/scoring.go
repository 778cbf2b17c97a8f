// Package scoring holds the leaderboard point policy: pure step functions over
// follower counts plus the award/reverse rules applied on every sale.
package scoring

import (
	"math"
	"strings"

	"github.com/silkloom/backend/internal/models"
)

// NormalizeMultiplier returns the order-point dampening factor for an
// affiliate's follower count. Smaller accounts earn full points per sale;
// the multiplier steps down as the audience grows to keep the leaderboard
// competitive for smaller affiliates.
func NormalizeMultiplier(followersCount int64) float64 {
	switch {
	case followersCount >= 100000:
		return 0.6
	case followersCount >= 75000:
		return 0.7
	case followersCount >= 50000:
		return 0.8
	case followersCount >= 25000:
		return 0.9
	default:
		return 1.0
	}
}

// PremiumPoints returns the flat follower-tier bonus awarded on every
// qualifying sale, independent of item count.
func PremiumPoints(followersCount int64) float64 {
	switch {
	case followersCount >= 200000:
		return 150
	case followersCount >= 100000:
		return 100
	case followersCount >= 75000:
		return 50
	case followersCount >= 50000:
		return 25
	default:
		return 0
	}
}

// Policy bundles the tunable point deltas and the set of house accounts that
// never earn points. The forward consistency award and the rollback penalty
// are configured separately; they are asymmetric in production today.
type Policy struct {
	OrderPointsPerItem float64
	ConsistencyAward   float64
	ConsistencyPenalty float64

	excluded map[string]struct{}
}

// NewPolicy builds a Policy with the given consistency deltas and excluded
// account usernames. Exclusion matching is case-insensitive.
func NewPolicy(consistencyAward, consistencyPenalty float64, excludedAccounts []string) Policy {
	excluded := make(map[string]struct{}, len(excludedAccounts))
	for _, username := range excludedAccounts {
		excluded[strings.ToLower(strings.TrimSpace(username))] = struct{}{}
	}
	return Policy{
		OrderPointsPerItem: 10,
		ConsistencyAward:   consistencyAward,
		ConsistencyPenalty: consistencyPenalty,
		excluded:           excluded,
	}
}

// IsExcluded reports whether the affiliate earns no points (house account).
func (p Policy) IsExcluded(affiliateUsername string) bool {
	_, ok := p.excluded[strings.ToLower(strings.TrimSpace(affiliateUsername))]
	return ok
}

// AwardSale applies one sale of itemCount items to the entry and recomputes
// the derived total. FollowersCount is never modified here.
func (p Policy) AwardSale(entry *models.LeaderboardEntry, itemCount int) {
	entry.OrderPoints += float64(itemCount) * p.OrderPointsPerItem * NormalizeMultiplier(entry.FollowersCount)
	entry.PremiumPoints += PremiumPoints(entry.FollowersCount)
	entry.ConsistencyPoints += p.ConsistencyAward
	recomputeTotal(entry)
}

// ReverseSale undoes one sale of itemCount items, flooring every field at
// zero. The reversal uses the entry's current follower count, not the count
// at sale time, so it is an approximation when the count changed in between.
func (p Policy) ReverseSale(entry *models.LeaderboardEntry, itemCount int) {
	orderPoints := float64(itemCount) * p.OrderPointsPerItem * NormalizeMultiplier(entry.FollowersCount)
	entry.OrderPoints = math.Max(0, entry.OrderPoints-orderPoints)
	entry.PremiumPoints = math.Max(0, entry.PremiumPoints-PremiumPoints(entry.FollowersCount))
	entry.ConsistencyPoints = math.Max(0, entry.ConsistencyPoints-p.ConsistencyPenalty)
	recomputeTotal(entry)
}

func recomputeTotal(entry *models.LeaderboardEntry) {
	entry.TotalPoints = entry.OrderPoints + entry.PremiumPoints + entry.ConsistencyPoints
}
