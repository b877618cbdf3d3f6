package pattern

import (
	"fmt"
	"math/rand"

	"synapsis/internal/model"
)

// Validate checks every pattern in the set against the configured input
// and output sizes. Malformed lengths are programmer errors.
func Validate(patterns []model.Pattern, inputSize, outputSize int) error {
	if len(patterns) == 0 {
		return fmt.Errorf("pattern set is empty")
	}
	for i, p := range patterns {
		if len(p.Input) != inputSize {
			return fmt.Errorf("pattern %d: input length mismatch: got=%d want=%d", i, len(p.Input), inputSize)
		}
		if len(p.Target) != outputSize {
			return fmt.Errorf("pattern %d: target length mismatch: got=%d want=%d", i, len(p.Target), outputSize)
		}
	}
	return nil
}

// Sampler draws patterns from a fixed set with an explicit random source,
// so a given seed replays the same presentation order.
type Sampler struct {
	patterns []model.Pattern
	rng      *rand.Rand
}

func NewSampler(patterns []model.Pattern, rng *rand.Rand) (*Sampler, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("pattern set is empty")
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Sampler{patterns: patterns, rng: rng}, nil
}

// Next draws one pattern uniformly at random.
func (s *Sampler) Next() model.Pattern {
	return s.patterns[s.rng.Intn(len(s.patterns))]
}

// At returns the pattern at index modulo the set size, for round-robin
// presentation.
func (s *Sampler) At(index int) model.Pattern {
	return s.patterns[index%len(s.patterns)]
}

// Len reports the pattern set size.
func (s *Sampler) Len() int { return len(s.patterns) }

// FourBitDemo is the fixed four-pattern set used by baseline experiments:
// two input bits mirrored onto two outputs, presented as 4-wide inputs.
func FourBitDemo() []model.Pattern {
	return []model.Pattern{
		{Input: []float64{0, 0, 1, 1}, Target: []float64{0, 1}},
		{Input: []float64{1, 1, 0, 0}, Target: []float64{1, 0}},
		{Input: []float64{1, 0, 1, 0}, Target: []float64{1, 1}},
		{Input: []float64{0, 1, 0, 1}, Target: []float64{0, 0}},
	}
}
