// Package scoring combines sub-scores into the normalized aggregate and
// computes the tiered points value used to size the token reward.
package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// DefaultMaxPoints caps the points total. 630 corresponds to the deployed
// reward factor so that points/max yields the reward multiplier.
const DefaultMaxPoints = 630

// minNormalizedScore guarantees a passing contribution always earns the
// minimum payout when multiplied by the reward factor.
const minNormalizedScore = 0.00000158730158730159

// Volume tier thresholds in settlement currency.
var (
	volumeTier1M   = decimal.NewFromInt(1_000_000)
	volumeTier100K = decimal.NewFromInt(100_000)
	volumeTier10K  = decimal.NewFromInt(10_000)
	volumeTier1K   = decimal.NewFromInt(1_000)
	volumeTier100  = decimal.NewFromInt(100)
)

// PointsBreakdown carries the tier values and their reasons.
type PointsBreakdown struct {
	VolumePoints    int
	VolumeReason    string
	DiversityPoints int
	DiversityReason string
	HistoryPoints   int
	HistoryReason   string
	TotalPoints     int
}

// VolumePoints maps total trading volume to its point tier.
// Tiers are highest-applicable-only, not cumulative.
func VolumePoints(volume decimal.Decimal) (int, string) {
	switch {
	case volume.GreaterThanOrEqual(volumeTier1M):
		return 500, "500 (1M+ volume)"
	case volume.GreaterThanOrEqual(volumeTier100K):
		return 150, "150 (100k+ volume)"
	case volume.GreaterThanOrEqual(volumeTier10K):
		return 50, "50 (10k+ volume)"
	case volume.GreaterThanOrEqual(volumeTier1K):
		return 25, "25 (1k+ volume)"
	case volume.GreaterThanOrEqual(volumeTier100):
		return 5, "5 (100+ volume)"
	}
	return 1, "1 (minimum reward)"
}

// DiversityPoints maps distinct asset count to its point tier.
func DiversityPoints(uniqueAssets int) (int, string) {
	switch {
	case uniqueAssets >= 5:
		return 30, "30 (5+ assets)"
	case uniqueAssets >= 3:
		return 10, "10 (3-4 assets)"
	}
	return 0, "0 (< 3 assets)"
}

// HistoryPoints maps trading history length in days to its point tier.
func HistoryPoints(days int) (int, string) {
	switch {
	case days >= 1095:
		return 100, "100 (3+ years)"
	case days >= 365:
		return 50, "50 (1+ year)"
	}
	return 0, "0 (< 1 year)"
}

// ComputePoints derives the points breakdown from raw trading statistics.
// The total is floored at 1 and capped at maxPoints.
func ComputePoints(stats domain.TradingStats, maxPoints int) PointsBreakdown {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	b := PointsBreakdown{}
	b.VolumePoints, b.VolumeReason = VolumePoints(stats.TotalVolume)
	b.DiversityPoints, b.DiversityReason = DiversityPoints(len(stats.UniqueAssets))
	b.HistoryPoints, b.HistoryReason = HistoryPoints(stats.ActivityPeriodDays)

	b.TotalPoints = b.VolumePoints + b.DiversityPoints + b.HistoryPoints
	if b.TotalPoints < 1 {
		b.TotalPoints = 1
	}
	if b.TotalPoints > maxPoints {
		b.TotalPoints = maxPoints
	}
	return b
}

// Normalize converts points to the reward multiplier in (0,1], with the
// minimum-score floor. Pure; the token-amount conversion happens outside the
// engine.
func Normalize(points, maxPoints int) (float64, error) {
	if maxPoints <= 0 {
		return 0, fmt.Errorf("max points must be positive, got %d", maxPoints)
	}
	score := float64(points) / float64(maxPoints)
	if score < minNormalizedScore {
		score = minNormalizedScore
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, nil
}
