package engine

import (
	"errors"
	"fmt"

	"synapsis/internal/chemical"
	"synapsis/internal/model"
	"synapsis/internal/nn"
	"synapsis/internal/plasticity"
)

var ErrNoSynapses = errors.New("network has no synapses")

// TrainingState is the orchestrator's transient bookkeeping: the
// modulatory round-robin cursor, the captured starting radius for
// annealing, and the provisional-commit scratch. None of it belongs to
// the network's structure.
type TrainingState struct {
	ModCursor     int
	TotalEpisodes int

	annealStart    float64
	annealCaptured bool

	pendingSnapshot []float64
	pendingAccuracy float64
	hasPending      bool
}

// Engine owns one network for the duration of a run and is its only
// mutator. totalEpisodes feeds radius annealing; pass 0 when the episode
// horizon is unknown, which fixes the radius.
type Engine struct {
	net   *model.Network
	state TrainingState
}

func New(net *model.Network, totalEpisodes int) (*Engine, error) {
	if net == nil {
		return nil, errors.New("network is required")
	}
	if len(net.Synapses) == 0 {
		return nil, ErrNoSynapses
	}
	return &Engine{
		net:   net,
		state: TrainingState{TotalEpisodes: totalEpisodes},
	}, nil
}

func (e *Engine) Network() *model.Network { return e.net }

// Step runs one full training step: forward pass, local eligibility,
// dampening, flag accumulation, reward broadcast and the gated weight
// update, in the fixed pipeline order. episode is the zero-based training
// step index used by warmup, shaping and annealing schedules.
func (e *Engine) Step(input, target []float64, episode int) (model.StepMetrics, error) {
	net := e.net
	cfg := net.Config
	if len(target) != len(net.Outputs) {
		return model.StepMetrics{}, fmt.Errorf("target length mismatch: got=%d want=%d", len(target), len(net.Outputs))
	}

	// 1-2. Clamp inputs and propagate. Neuron statistics and homeostasis
	// run exactly once regardless of the cycle count.
	if err := nn.ClampInputs(net, input); err != nil {
		return model.StepMetrics{}, err
	}
	for cycle := 0; cycle < cfg.PropagationCycles; cycle++ {
		nn.Fire(net)
	}
	nn.UpdateStatistics(net)
	nn.Regulate(net)

	// 3. Ambient field.
	nn.UpdateAmbient(net)

	// 4-5. Eligibility and activity history.
	for i := range net.Synapses {
		s := &net.Synapses[i]
		preFired := net.States[s.Pre].Fired
		postFired := net.States[s.Post].Fired
		s.Trace = plasticity.ComputeEligibility(preFired, postFired, net.States[s.Post].Ambient, cfg)
		plasticity.UpdateActivityHistory(s, preFired || postFired, cfg.ActivityHistoryDecay)
	}

	// 6. Dampening.
	if !cfg.SkipDampening {
		for i := range net.Synapses {
			s := &net.Synapses[i]
			postState := &net.States[s.Post]
			s.Trace *= plasticity.ActivityDampening(s.ActivityHistory, cfg.ActivityHistoryMinimum)
			s.Trace *= plasticity.InformationDampening(postState.FireRate)
			s.Trace *= plasticity.AmbientDampening(postState.Fired, postState.Ambient, cfg.AmbientThreshold)
		}
	}

	// 7. Flag accumulation.
	if cfg.Plasticity != model.PlasticityRaw {
		for i := range net.Synapses {
			plasticity.UpdateFlag(&net.Synapses[i], cfg)
		}
	}

	// 8. Reward, plus the provisional commit check: the previous step's
	// speculative update survives only if this step's accuracy reached
	// the accuracy recorded when it was applied.
	accuracy, loss := score(net, target)
	reward := chemical.ComputeReward(accuracy, episode, cfg)
	if cfg.ProvisionalWeights && e.state.hasPending {
		if accuracy < e.state.pendingAccuracy {
			plasticity.RestoreWeights(net, e.state.pendingSnapshot)
		}
		e.state.hasPending = false
	}

	// 9-10. Modulatory firing and chemical diffusion.
	radius := e.diffusionRadius(episode)
	if cfg.PerBitReward {
		chemical.BroadcastPerBit(net, target, radius)
	} else {
		e.state.ModCursor = chemical.FireModulatory(net, reward, e.state.ModCursor)
		chemical.Broadcast(net, reward, radius)
	}

	// 11. Weight update with frustration bookkeeping, speculatively when
	// provisional commits are on.
	var snapshot []float64
	if cfg.ProvisionalWeights {
		snapshot = plasticity.SnapshotWeights(net)
	}
	for i := range net.Synapses {
		s := &net.Synapses[i]
		effective := plasticity.EffectiveTrace(s, episode, cfg)
		delta := plasticity.UpdateWeight(s, effective, cfg)
		plasticity.ApplyFrustration(s, delta, cfg)
	}
	if cfg.ProvisionalWeights {
		e.state.pendingSnapshot = snapshot
		e.state.pendingAccuracy = accuracy
		e.state.hasPending = true
	}

	// 12. Chemical decay.
	chemical.DecayChemical(net)

	// 13. Metrics.
	return e.metrics(episode, accuracy, loss)
}

// Evaluate scores the current weights without perturbing training state:
// all neuron state is snapshotted, the forward pass runs alone, and the
// snapshot is restored before returning.
func (e *Engine) Evaluate(input, target []float64) (model.EvalResult, error) {
	net := e.net
	if len(target) != len(net.Outputs) {
		return model.EvalResult{}, fmt.Errorf("target length mismatch: got=%d want=%d", len(target), len(net.Outputs))
	}

	saved := make([]model.NeuronState, len(net.States))
	copy(saved, net.States)

	if err := nn.ClampInputs(net, input); err != nil {
		return model.EvalResult{}, err
	}
	for cycle := 0; cycle < net.Config.PropagationCycles; cycle++ {
		nn.Fire(net)
	}

	outputs := make([]float64, len(net.Outputs))
	for i, idx := range net.Outputs {
		outputs[i] = net.States[idx].Output
	}
	accuracy, loss := score(net, target)

	copy(net.States, saved)
	return model.EvalResult{Outputs: outputs, Accuracy: accuracy, Loss: loss}, nil
}

func (e *Engine) diffusionRadius(episode int) float64 {
	cfg := e.net.Config
	if cfg.ChemicalRadiusMinimum <= 0 {
		return cfg.ChemicalDiffusionRadius
	}
	if !e.state.annealCaptured {
		e.state.annealStart = cfg.ChemicalDiffusionRadius
		e.state.annealCaptured = true
	}
	return chemical.AnnealedRadius(e.state.annealStart, cfg, episode, e.state.TotalEpisodes)
}

// score reads accuracy (fraction of matching output bits) and mean squared
// error off the current output states.
func score(net *model.Network, target []float64) (accuracy, loss float64) {
	matches := 0
	for i, idx := range net.Outputs {
		out := net.States[idx].Output
		if (out >= 0.5) == (target[i] >= 0.5) {
			matches++
		}
		diff := out - target[i]
		loss += diff * diff
	}
	n := float64(len(net.Outputs))
	return float64(matches) / n, loss / n
}

func (e *Engine) metrics(episode int, accuracy, loss float64) (model.StepMetrics, error) {
	net := e.net
	if len(net.Synapses) == 0 {
		return model.StepMetrics{}, ErrNoSynapses
	}

	sumAbsWeight := 0.0
	activeTraces := 0
	for i := range net.Synapses {
		s := &net.Synapses[i]
		if s.Weight >= 0 {
			sumAbsWeight += s.Weight
		} else {
			sumAbsWeight -= s.Weight
		}
		if s.Trace != 0 {
			activeTraces++
		}
	}

	sumRate, sumThreshold := 0.0, 0.0
	counted := 0
	for i := range net.Neurons {
		if net.Neurons[i].Role == model.RoleInput {
			continue
		}
		sumRate += net.States[i].FireRate
		sumThreshold += net.States[i].Threshold
		counted++
	}

	m := model.StepMetrics{
		Episode:             episode,
		Accuracy:            accuracy,
		Loss:                loss,
		MeanAbsWeight:       sumAbsWeight / float64(len(net.Synapses)),
		ActiveTraceFraction: float64(activeTraces) / float64(len(net.Synapses)),
	}
	if counted > 0 {
		m.MeanFireRate = sumRate / float64(counted)
		m.MeanThreshold = sumThreshold / float64(counted)
	}
	return m, nil
}
