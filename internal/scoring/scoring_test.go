package scoring

import (
	"testing"

	"github.com/silkloom/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		followers int64
		want      float64
	}{
		{"zero followers", 0, 1.0},
		{"below first threshold", 24999, 1.0},
		{"at 25k", 25000, 0.9},
		{"example scenario count", 30000, 0.9},
		{"at 50k", 50000, 0.8},
		{"at 75k", 75000, 0.7},
		{"just under 100k", 99999, 0.7},
		{"at 100k", 100000, 0.6},
		{"very large account", 5000000, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMultiplier(tt.followers))
		})
	}
}

func TestPremiumPoints(t *testing.T) {
	tests := []struct {
		name      string
		followers int64
		want      float64
	}{
		{"zero followers", 0, 0},
		{"below 50k", 49999, 0},
		{"at 50k", 50000, 25},
		{"at 75k", 75000, 50},
		{"at 100k", 100000, 100},
		{"just under 200k", 199999, 100},
		{"at 200k", 200000, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PremiumPoints(tt.followers))
		})
	}
}

func TestPolicyAwardSale(t *testing.T) {
	policy := NewPolicy(25, 5, nil)

	entry := &models.LeaderboardEntry{
		AffiliateUsername: "smallaccount",
		FollowersCount:    30000,
	}

	policy.AwardSale(entry, 2)

	assert.Equal(t, float64(18), entry.OrderPoints) // 2 * 10 * 0.9
	assert.Equal(t, float64(0), entry.PremiumPoints)
	assert.Equal(t, float64(25), entry.ConsistencyPoints)
	assert.Equal(t, float64(43), entry.TotalPoints)
	assert.Equal(t, int64(30000), entry.FollowersCount, "follower count must never change")
}

func TestPolicyAwardSaleLargeAccount(t *testing.T) {
	policy := NewPolicy(25, 5, nil)

	entry := &models.LeaderboardEntry{
		AffiliateUsername: "bigaccount",
		FollowersCount:    200000,
		OrderPoints:       100,
		PremiumPoints:     150,
		ConsistencyPoints: 50,
		TotalPoints:       300,
	}

	policy.AwardSale(entry, 3)

	assert.Equal(t, float64(118), entry.OrderPoints) // 100 + 3*10*0.6
	assert.Equal(t, float64(300), entry.PremiumPoints)
	assert.Equal(t, float64(75), entry.ConsistencyPoints)
	assert.Equal(t, entry.OrderPoints+entry.PremiumPoints+entry.ConsistencyPoints, entry.TotalPoints)
}

func TestPolicyReverseSale(t *testing.T) {
	policy := NewPolicy(25, 5, nil)

	entry := &models.LeaderboardEntry{
		AffiliateUsername: "smallaccount",
		FollowersCount:    30000,
	}
	policy.AwardSale(entry, 2)
	policy.ReverseSale(entry, 2)

	assert.Equal(t, float64(0), entry.OrderPoints)
	assert.Equal(t, float64(0), entry.PremiumPoints)
	// Asymmetric by configuration: +25 on award, -5 on reversal.
	assert.Equal(t, float64(20), entry.ConsistencyPoints)
	assert.Equal(t, float64(20), entry.TotalPoints)
}

func TestPolicyReverseSaleFloorsAtZero(t *testing.T) {
	policy := NewPolicy(25, 5, nil)

	entry := &models.LeaderboardEntry{
		AffiliateUsername: "newcomer",
		FollowersCount:    80000,
		OrderPoints:       5,
		PremiumPoints:     10,
		ConsistencyPoints: 2,
		TotalPoints:       17,
	}

	policy.ReverseSale(entry, 4)

	assert.Equal(t, float64(0), entry.OrderPoints)
	assert.Equal(t, float64(0), entry.PremiumPoints)
	assert.Equal(t, float64(0), entry.ConsistencyPoints)
	assert.Equal(t, float64(0), entry.TotalPoints)
}

func TestTotalPointsInvariantAcrossMutations(t *testing.T) {
	policy := NewPolicy(25, 5, nil)

	entry := &models.LeaderboardEntry{
		AffiliateUsername: "steady",
		FollowersCount:    60000,
	}

	for i := 0; i < 7; i++ {
		policy.AwardSale(entry, i+1)
		assert.Equal(t, entry.OrderPoints+entry.PremiumPoints+entry.ConsistencyPoints, entry.TotalPoints)
	}
	for i := 0; i < 10; i++ {
		policy.ReverseSale(entry, 3)
		assert.Equal(t, entry.OrderPoints+entry.PremiumPoints+entry.ConsistencyPoints, entry.TotalPoints)
		assert.GreaterOrEqual(t, entry.OrderPoints, float64(0))
		assert.GreaterOrEqual(t, entry.PremiumPoints, float64(0))
		assert.GreaterOrEqual(t, entry.ConsistencyPoints, float64(0))
	}
}

func TestPolicyIsExcluded(t *testing.T) {
	policy := NewPolicy(25, 5, []string{"HouseBrand", " ops_account "})

	assert.True(t, policy.IsExcluded("housebrand"))
	assert.True(t, policy.IsExcluded("HOUSEBRAND"))
	assert.True(t, policy.IsExcluded("ops_account"))
	assert.False(t, policy.IsExcluded("regular_affiliate"))
	assert.False(t, policy.IsExcluded(""))
}
