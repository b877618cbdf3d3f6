package plasticity

import "synapsis/internal/model"

func clampAbs(x, limit float64) float64 {
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}

// UpdateWeight applies continuous decay first, then the clamped learning
// delta. The clamped delta is returned for frustration bookkeeping.
// Invariant: |weight| <= MaxWeightMagnitude afterwards.
func UpdateWeight(s *model.Synapse, effectiveTrace float64, cfg model.Config) float64 {
	s.Weight *= 1 - cfg.WeightDecay
	delta := clampAbs(effectiveTrace*s.Chemical*cfg.LearningRate, cfg.MaxWeightDelta)
	s.Weight = clampAbs(s.Weight+delta, cfg.MaxWeightMagnitude)
	return delta
}

// ApplyFrustration tracks sustained one-directional weight movement under
// persistently poor chemical reward. When the consecutive same-direction
// count reaches the window while the chemical EMA stays below the
// threshold, the weight is partially reflected and all frustration and
// flag state resets. Zero deltas leave the tracking untouched: the last
// nonzero direction stands.
func ApplyFrustration(s *model.Synapse, delta float64, cfg model.Config) {
	if cfg.FrustrationWindow <= 0 {
		return
	}
	deltaSign := sign(delta)
	if deltaSign == 0 {
		return
	}
	if deltaSign == s.LastDeltaSign {
		s.SameDirectionCount++
		s.DirectionChemEMA = 0.95*s.DirectionChemEMA + 0.05*s.Chemical
	} else {
		s.LastDeltaSign = deltaSign
		s.SameDirectionCount = 1
		s.DirectionChemEMA = s.Chemical
	}

	if s.SameDirectionCount >= cfg.FrustrationWindow && s.DirectionChemEMA < cfg.FrustrationThreshold {
		s.Weight *= -cfg.FrustrationFlipStrength
		s.FlipCount++
		s.LastDeltaSign = 0
		s.SameDirectionCount = 0
		s.DirectionChemEMA = 0
		s.FlagStrength = 0
		s.ConsistentCount = 0
		s.LastTraceSign = 0
	}
}

// SnapshotWeights copies the full weight vector for a provisional commit.
func SnapshotWeights(net *model.Network) []float64 {
	snapshot := make([]float64, len(net.Synapses))
	for i := range net.Synapses {
		snapshot[i] = net.Synapses[i].Weight
	}
	return snapshot
}

// RestoreWeights rolls every synapse weight back to the snapshot.
func RestoreWeights(net *model.Network, snapshot []float64) {
	for i := range snapshot {
		net.Synapses[i].Weight = snapshot[i]
	}
}
