package plasticity

import "synapsis/internal/model"

// ComputeEligibility is the four-quadrant local correlation rule. It is a
// pure function of the endpoint firing pair and the post neuron's ambient
// field; the result is recomputed fresh every step and never accumulated.
//
// Co-silence only earns its bonus when the ambient field is strictly above
// the threshold; equality earns zero.
func ComputeEligibility(preFired, postFired bool, postAmbient float64, cfg model.Config) float64 {
	switch {
	case preFired && postFired:
		return cfg.CoActivationStrength
	case !preFired && !postFired:
		if postAmbient > cfg.AmbientThreshold {
			return cfg.CoSilenceStrength
		}
		return 0
	default:
		return cfg.MismatchStrength
	}
}

// UpdateActivityHistory folds this step's participation into the synapse's
// running average. A synapse participates when either endpoint fired.
func UpdateActivityHistory(s *model.Synapse, active bool, decay float64) {
	bit := 0.0
	if active {
		bit = 1.0
	}
	s.ActivityHistory = decay*s.ActivityHistory + (1-decay)*bit
}
