package chemical

import (
	"synapsis/internal/geom"
	"synapsis/internal/model"
)

// FalloffFactor evaluates the configured distance law for a source at
// distance d with the given diffusion radius. Distances at or inside zero
// short-circuit to full strength rather than dividing by zero.
func FalloffFactor(law model.Falloff, d, radius float64) float64 {
	switch law {
	case model.FalloffInverse:
		if d <= 0 {
			return 1
		}
		return 1 / d
	case model.FalloffInverseSquare:
		if d <= 0 {
			return 1
		}
		return 1 / (d * d)
	case model.FalloffLinear:
		if radius <= 0 {
			return 0
		}
		f := 1 - d/radius
		if f < 0 {
			return 0
		}
		return f
	default: // constant
		return 1
	}
}

// synapsePoint is where diffusion reaches a synapse: the midpoint of its
// endpoints.
func synapsePoint(net *model.Network, s *model.Synapse) geom.Point {
	a := net.Neurons[s.Pre].Position
	b := net.Neurons[s.Post].Position
	return geom.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}

// FireModulatory resolves which modulatory neurons fire this step. In the
// default mode every modulatory neuron fires together whenever the reward
// is nonzero. With cycling enabled exactly one fires per step, chosen by
// the cursor, which then advances; a zero reward still consumes the turn
// (the broadcast is a no-op because the scaled value is zero).
func FireModulatory(net *model.Network, reward float64, cursor int) int {
	for _, idx := range net.Modulatory {
		net.States[idx].Fired = false
		net.States[idx].Output = 0
	}
	if len(net.Modulatory) == 0 {
		return cursor
	}
	if net.Config.ModulatoryCycling {
		idx := net.Modulatory[cursor%len(net.Modulatory)]
		net.States[idx].Fired = true
		net.States[idx].Output = 1
		return cursor + 1
	}
	if reward != 0 {
		for _, idx := range net.Modulatory {
			net.States[idx].Fired = true
			net.States[idx].Output = 1
		}
	}
	return cursor
}

// Broadcast diffuses the scalar reward from every modulatory neuron that
// fired this step to each synapse within the radius, accumulating into the
// synapse chemical levels additively.
func Broadcast(net *model.Network, reward, radius float64) {
	if reward == 0 {
		return
	}
	strength := net.Config.PositiveRewardStrength
	if reward < 0 {
		strength = abs(net.Config.NegativeRewardStrength)
	}
	for _, src := range net.Modulatory {
		if !net.States[src].Fired {
			continue
		}
		origin := net.Neurons[src].Position
		for i := range net.Synapses {
			s := &net.Synapses[i]
			d := geom.Distance(origin, synapsePoint(net, s))
			if d > radius {
				continue
			}
			s.Chemical += reward * strength * FalloffFactor(net.Config.ChemicalFalloff, d, radius)
		}
	}
}

// BroadcastPerBit replaces the global mode: each output neuron diffuses
// its own correctness signal from its own position, positive on a match
// and negative on a mismatch.
func BroadcastPerBit(net *model.Network, target []float64, radius float64) {
	for bit, src := range net.Outputs {
		signal := net.Config.PositiveRewardStrength
		if !bitsMatch(net.States[src].Output, target[bit]) {
			signal = -abs(net.Config.NegativeRewardStrength)
		}
		origin := net.Neurons[src].Position
		for i := range net.Synapses {
			s := &net.Synapses[i]
			d := geom.Distance(origin, synapsePoint(net, s))
			if d > radius {
				continue
			}
			s.Chemical += signal * FalloffFactor(net.Config.ChemicalFalloff, d, radius)
		}
	}
}

// DecayChemical geometrically decays every synapse's chemical level.
// Applied exactly once per step, after the weight update.
func DecayChemical(net *model.Network) {
	for i := range net.Synapses {
		net.Synapses[i].Chemical *= net.Config.ChemicalDecayRate
	}
}

// AnnealedRadius interpolates the diffusion radius linearly from its
// starting value toward the configured minimum by episode fraction. With
// no minimum configured, or no known episode horizon, the radius is fixed.
func AnnealedRadius(start float64, cfg model.Config, episode, totalEpisodes int) float64 {
	if cfg.ChemicalRadiusMinimum <= 0 || totalEpisodes <= 0 {
		return start
	}
	frac := float64(episode) / float64(totalEpisodes)
	if frac > 1 {
		frac = 1
	}
	radius := start + (cfg.ChemicalRadiusMinimum-start)*frac
	if radius < cfg.ChemicalRadiusMinimum {
		radius = cfg.ChemicalRadiusMinimum
	}
	return radius
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func bitsMatch(output, target float64) bool {
	return (output >= 0.5) == (target >= 0.5)
}
