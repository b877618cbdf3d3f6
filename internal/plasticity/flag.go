package plasticity

import "synapsis/internal/model"

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// UpdateFlag folds the current step's trace into the synapse's flag
// strength according to the configured plasticity mode. Raw mode keeps no
// flag state at all.
func UpdateFlag(s *model.Synapse, cfg model.Config) {
	switch cfg.Plasticity {
	case model.PlasticitySimpleFlag:
		updateSimpleFlag(s, cfg)
	case model.PlasticityConsistentFlag:
		updateConsistentFlag(s, cfg)
	}
}

// updateSimpleFlag nudges flag strength toward +-1 by the configured gain
// on any nonzero trace, and decays it multiplicatively on a zero trace.
func updateSimpleFlag(s *model.Synapse, cfg model.Config) {
	traceSign := sign(s.Trace)
	if traceSign == 0 {
		s.FlagStrength *= cfg.FlagDecayRate
		return
	}
	s.FlagStrength = clampUnit(s.FlagStrength + cfg.FlagStrengthGain*float64(traceSign))
}

// updateConsistentFlag requires ConsistencyThreshold consecutive same-sign
// traces before strength may grow. A sign flip restarts the streak and
// applies the sharper flip decay; a zero trace decays passively without
// touching the streak or the last-seen sign.
func updateConsistentFlag(s *model.Synapse, cfg model.Config) {
	traceSign := sign(s.Trace)
	if traceSign == 0 {
		s.FlagStrength *= cfg.FlagDecayRate
		return
	}
	if s.LastTraceSign != 0 && traceSign != s.LastTraceSign {
		s.LastTraceSign = traceSign
		s.ConsistentCount = 1
		s.FlagStrength *= cfg.FlagDecayOnFlip
		return
	}
	s.LastTraceSign = traceSign
	s.ConsistentCount++
	if s.ConsistentCount >= cfg.ConsistencyThreshold {
		s.FlagStrength = clampUnit(s.FlagStrength + cfg.FlagStrengthGain*float64(traceSign))
	}
}

// EffectiveTrace resolves the trace the weight update will consume. With
// gating enabled the flag strength substitutes for the trace once it
// clears the threshold, except during the warmup episodes where the raw
// trace passes unconditionally so early learning can bootstrap.
func EffectiveTrace(s *model.Synapse, episode int, cfg model.Config) float64 {
	if cfg.Plasticity == model.PlasticityRaw || cfg.FlagStrengthThreshold <= 0 {
		return s.Trace
	}
	if cfg.FlagGateWarmup > 0 && episode < cfg.FlagGateWarmup {
		return s.Trace
	}
	if s.FlagStrength >= cfg.FlagStrengthThreshold || s.FlagStrength <= -cfg.FlagStrengthThreshold {
		return s.FlagStrength
	}
	return 0
}
