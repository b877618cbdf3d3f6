package chemical

import (
	"math"

	"synapsis/internal/model"
)

// ComputeReward maps output accuracy onto the broadcast scalar.
// The linear mapping (accuracy-0.5)*2 spans [-1, 1]. When shaping is
// configured it sharpens toward sign(r)*r^2, either blended in linearly
// over the shaping window or applied as a fixed exponent. With neither
// configured the reward stays linear.
func ComputeReward(accuracy float64, episode int, cfg model.Config) float64 {
	linear := (accuracy - 0.5) * 2

	if cfg.RewardShapingWindow > 0 {
		frac := float64(episode) / float64(cfg.RewardShapingWindow)
		if frac > 1 {
			frac = 1
		}
		shaped := signOf(linear) * linear * linear
		return (1-frac)*linear + frac*shaped
	}
	if cfg.RewardExponent > 0 {
		return signOf(linear) * math.Pow(math.Abs(linear), cfg.RewardExponent)
	}
	return linear
}

func signOf(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
