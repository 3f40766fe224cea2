package scoring

import "fmt"

// Fixed public weights. They must sum to 1.0.
const (
	WeightAuthenticity = 0.40
	WeightOwnership    = 0.30
	WeightQuality      = 0.20
	WeightUniqueness   = 0.10
)

// Uniqueness sub-score policy: first contributions score full, repeats are
// discounted but nonzero since account data legitimately changes over time.
const (
	UniquenessFirst  = 1.0
	UniquenessRepeat = 0.30
)

// SubScores are the four independent sub-scores, each in [0,1].
type SubScores struct {
	Authenticity float64
	Ownership    float64
	Quality      float64
	Uniqueness   float64
}

// Aggregate combines the sub-scores by the fixed weights, clamped to [0,1].
func Aggregate(s SubScores) float64 {
	score := WeightAuthenticity*s.Authenticity +
		WeightOwnership*s.Ownership +
		WeightQuality*s.Quality +
		WeightUniqueness*s.Uniqueness

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ValidateWeights checks the weight-sum invariant. A violated sum is a
// programming error surfaced at engine construction, never at scoring time.
func ValidateWeights() error {
	sum := WeightAuthenticity + WeightOwnership + WeightQuality + WeightUniqueness
	const tolerance = 1e-9
	if sum < 1.0-tolerance || sum > 1.0+tolerance {
		return fmt.Errorf("score weights sum to %f, expected 1.0", sum)
	}
	return nil
}

// UniquenessScore maps the prior-contribution fact to the uniqueness sub-score.
func UniquenessScore(previouslyContributed bool) float64 {
	if previouslyContributed {
		return UniquenessRepeat
	}
	return UniquenessFirst
}
