package analysis

import "math"

// NormalizeScores rescales a raw score set into a probability distribution,
// rounding each value to two decimals. Because of the rounding the final sum
// may deviate from 1.0 by up to ±0.01; that tolerance is part of the contract.
// The all-zero input passes through unchanged rather than dividing by zero.
func NormalizeScores(s Scores) Scores {
	total := s.Sum()
	if total == 0 {
		return s
	}
	round := func(v float64) float64 {
		return math.Round(v/total*100) / 100
	}
	return Scores{
		Returnable:    round(s.Returnable),
		NotReturnable: round(s.NotReturnable),
		SendBack:      round(s.SendBack),
		Donation:      round(s.Donation),
		Disposal:      round(s.Disposal),
	}
}
