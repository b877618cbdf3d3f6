package hillclimb

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"synapsis/internal/engine"
	"synapsis/internal/model"
	"synapsis/internal/plasticity"
)

// ScoreFn evaluates one weight vector. Higher is better.
type ScoreFn func(ctx context.Context, weights []float64) (float64, error)

// Climber is a stochastic hill-climber over a network's weight vector:
// each attempt perturbs a handful of weights with annealed spread, keeps
// the candidate only when it beats the best score by MinImprovement, and
// stops early once GoalScore is reached.
type Climber struct {
	Rand              *rand.Rand
	Attempts          int
	Steps             int
	StepSize          float64
	PerturbationRange float64
	AnnealingFactor   float64
	MinImprovement    float64
	GoalScore         float64
}

func (c *Climber) validate() error {
	if c == nil || c.Rand == nil {
		return errors.New("random source is required")
	}
	if c.Steps <= 0 {
		return errors.New("steps must be > 0")
	}
	if c.StepSize <= 0 {
		return errors.New("step size must be > 0")
	}
	if c.PerturbationRange < 0 {
		return errors.New("perturbation range must be >= 0")
	}
	if c.AnnealingFactor < 0 {
		return errors.New("annealing factor must be >= 0")
	}
	if c.MinImprovement < 0 {
		return errors.New("min improvement must be >= 0")
	}
	return nil
}

// Optimize climbs from the given weight vector and returns the best one
// found with its score. The input slice is never mutated.
func (c *Climber) Optimize(ctx context.Context, weights []float64, score ScoreFn) ([]float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if err := c.validate(); err != nil {
		return nil, 0, err
	}
	if score == nil {
		return nil, 0, errors.New("score function is required")
	}
	if len(weights) == 0 {
		return nil, 0, errors.New("weight vector is empty")
	}

	perturbationRange := c.PerturbationRange
	if perturbationRange == 0 {
		perturbationRange = 1.0
	}
	annealingFactor := c.AnnealingFactor
	if annealingFactor == 0 {
		annealingFactor = 1.0
	}

	best := append([]float64(nil), weights...)
	bestScore, err := score(ctx, best)
	if err != nil {
		return nil, 0, err
	}
	if c.GoalScore > 0 && bestScore >= c.GoalScore {
		return best, bestScore, nil
	}

	for a := 0; a < c.Attempts; a++ {
		candidate, err := c.perturb(ctx, best, perturbationRange, annealingFactor)
		if err != nil {
			return nil, 0, err
		}
		candidateScore, err := score(ctx, candidate)
		if err != nil {
			return nil, 0, err
		}
		if candidateScore > bestScore+c.MinImprovement {
			best = candidate
			bestScore = candidateScore
		}
		if c.GoalScore > 0 && bestScore >= c.GoalScore {
			break
		}
	}
	return best, bestScore, nil
}

func (c *Climber) perturb(ctx context.Context, base []float64, perturbationRange, annealingFactor float64) ([]float64, error) {
	candidate := append([]float64(nil), base...)
	for s := 0; s < c.Steps; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := c.Rand.Intn(len(candidate))
		spread := c.StepSize * perturbationRange * math.Pow(annealingFactor, float64(s))
		delta := (c.Rand.Float64()*2 - 1) * spread
		candidate[idx] += delta
	}
	return candidate, nil
}

// TuneNetwork climbs the network's weights against mean evaluation
// accuracy over the pattern set and leaves the best vector installed.
// It returns the best accuracy reached.
func TuneNetwork(ctx context.Context, eng *engine.Engine, patterns []model.Pattern, c *Climber) (float64, error) {
	if len(patterns) == 0 {
		return 0, errors.New("pattern set is empty")
	}
	net := eng.Network()

	score := func(ctx context.Context, weights []float64) (float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		plasticity.RestoreWeights(net, weights)
		total := 0.0
		for _, p := range patterns {
			result, err := eng.Evaluate(p.Input, p.Target)
			if err != nil {
				return 0, err
			}
			total += result.Accuracy
		}
		return total / float64(len(patterns)), nil
	}

	best, bestScore, err := c.Optimize(ctx, plasticity.SnapshotWeights(net), score)
	if err != nil {
		return 0, err
	}
	plasticity.RestoreWeights(net, best)
	return bestScore, nil
}
