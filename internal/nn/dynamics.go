package nn

import (
	"fmt"

	"synapsis/internal/geom"
	"synapsis/internal/model"
)

// ClampInputs writes the pattern input onto the input neurons. A length
// mismatch is a programmer error and fails fast.
func ClampInputs(net *model.Network, input []float64) error {
	if len(input) != len(net.Inputs) {
		return fmt.Errorf("input length mismatch: got=%d want=%d", len(input), len(net.Inputs))
	}
	for i, idx := range net.Inputs {
		value := 0.0
		fired := false
		if input[i] >= 0.5 {
			value = 1.0
			fired = true
		}
		net.States[idx].Output = value
		net.States[idx].Fired = fired
	}
	return nil
}

// Fire runs one accumulate-and-fire pass over every non-input, non-
// modulatory neuron. Sums are computed from the pre-pass outputs first so
// all neurons transition simultaneously; a neuron fires iff its weighted
// input sum reaches its threshold (inclusive).
func Fire(net *model.Network) {
	sums := make([]float64, len(net.Neurons))
	for i := range net.Synapses {
		s := &net.Synapses[i]
		sums[s.Post] += s.Weight * net.States[s.Pre].Output
	}
	for i := range net.Neurons {
		role := net.Neurons[i].Role
		if role == model.RoleInput || role == model.RoleModulatory {
			continue
		}
		state := &net.States[i]
		if sums[i] >= state.Threshold {
			state.Output = 1.0
			state.Fired = true
		} else {
			state.Output = 0.0
			state.Fired = false
		}
	}
}

// UpdateStatistics advances cycle and fire counts for every non-input
// neuron and recomputes the fire rate. Called exactly once per training
// step regardless of how many propagation cycles ran.
func UpdateStatistics(net *model.Network) {
	for i := range net.Neurons {
		if net.Neurons[i].Role == model.RoleInput {
			continue
		}
		state := &net.States[i]
		state.CycleCount++
		if state.Fired {
			state.FireCount++
		}
		state.FireRate = fireRate(state.FireCount, state.CycleCount)
	}
}

func fireRate(fireCount, cycleCount int) float64 {
	if cycleCount == 0 {
		return 0
	}
	return float64(fireCount) / float64(cycleCount)
}

// RegulateThreshold nudges one neuron's threshold toward its target fire
// rate by a fixed step: a discrete integral controller, not proportional
// to the error magnitude.
func RegulateThreshold(state *model.NeuronState, targetFireRate, adjustRate float64) {
	switch {
	case state.FireRate > targetFireRate:
		state.Threshold += adjustRate
	case state.FireRate < targetFireRate:
		state.Threshold -= adjustRate
	}
}

// Regulate applies homeostasis to every non-input neuron. Output neurons
// are skipped when the fixed-output-threshold toggle is set.
func Regulate(net *model.Network) {
	cfg := net.Config
	for i := range net.Neurons {
		role := net.Neurons[i].Role
		if role == model.RoleInput {
			continue
		}
		if role == model.RoleOutput && cfg.FixedOutputThreshold {
			continue
		}
		RegulateThreshold(&net.States[i], cfg.TargetFireRate, cfg.ThresholdAdjustRate)
	}
}

// UpdateAmbient recomputes every neuron's ambient field: the inverse-
// distance-weighted sum of its precomputed neighbours' outputs. Zero
// distances contribute nothing rather than dividing by zero.
func UpdateAmbient(net *model.Network) {
	for i := range net.Neurons {
		field := 0.0
		for _, j := range net.Neurons[i].NeighbourIdx {
			if net.States[j].Output == 0 {
				continue
			}
			d := geom.Distance(net.Neurons[i].Position, net.Neurons[j].Position)
			if d > 0 {
				field += net.States[j].Output / d
			}
		}
		net.States[i].Ambient = field
	}
}
