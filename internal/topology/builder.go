package topology

import (
	"fmt"
	"math/rand"

	"synapsis/internal/geom"
	"synapsis/internal/model"
)

// Build constructs a network from cfg using rng for every random draw, so
// a given seed reproduces the same topology bit-for-bit. The returned
// network is fully formed and ready for stepping; connectivity itself is
// purely probabilistic, so no special-role neuron is guaranteed a synapse.
func Build(cfg model.Config, rng *rand.Rand) (*model.Network, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("build network: random source is required")
	}

	net := &model.Network{Config: cfg}
	placeNeurons(net, cfg, rng)
	assignRoles(net, cfg)
	wireSynapses(net, cfg, rng)
	computeNeighbours(net, cfg)
	return net, nil
}

func placeNeurons(net *model.Network, cfg model.Config, rng *rand.Rand) {
	for cluster := 0; cluster < cfg.ClusterCount; cluster++ {
		center := geom.Point{X: float64(cluster) * cfg.ClusterSpacing}
		count := cfg.NeuronsPerCluster
		if cluster >= 2 && cfg.HiddenClusterNeurons > 0 {
			count = cfg.HiddenClusterNeurons
		}
		for i := 0; i < count; i++ {
			net.Neurons = append(net.Neurons, model.Neuron{
				ID:       geom.NeuronID(cluster, i),
				Position: geom.Jitter(rng, center, cfg.ClusterSpread),
				Role:     model.RoleRegular,
				Cluster:  cluster,
			})
			net.States = append(net.States, model.NeuronState{
				Threshold: cfg.InitialThreshold,
			})
		}
	}
}

// assignRoles marks the first ModulatoryPerCluster neurons of every cluster
// as modulatory, the first InputSize remaining neurons of cluster 0 as
// inputs, and the last OutputSize remaining neurons of cluster 1 as
// outputs.
func assignRoles(net *model.Network, cfg model.Config) {
	perClusterSeen := make(map[int]int, cfg.ClusterCount)
	for i := range net.Neurons {
		n := &net.Neurons[i]
		if perClusterSeen[n.Cluster] < cfg.ModulatoryPerCluster {
			n.Role = model.RoleModulatory
			net.Modulatory = append(net.Modulatory, i)
		}
		perClusterSeen[n.Cluster]++
	}

	for i := range net.Neurons {
		n := &net.Neurons[i]
		if n.Cluster == 0 && n.Role == model.RoleRegular && len(net.Inputs) < cfg.InputSize {
			n.Role = model.RoleInput
			net.Inputs = append(net.Inputs, i)
		}
	}

	for i := len(net.Neurons) - 1; i >= 0; i-- {
		n := &net.Neurons[i]
		if n.Cluster == 1 && n.Role == model.RoleRegular && len(net.Outputs) < cfg.OutputSize {
			n.Role = model.RoleOutput
			net.Outputs = append(net.Outputs, i)
		}
	}
	// Restore ascending order after the reverse scan.
	for l, r := 0, len(net.Outputs)-1; l < r; l, r = l+1, r-1 {
		net.Outputs[l], net.Outputs[r] = net.Outputs[r], net.Outputs[l]
	}
}

func wireSynapses(net *model.Network, cfg model.Config, rng *rand.Rand) {
	for pre := range net.Neurons {
		for post := range net.Neurons {
			if pre == post {
				continue
			}
			if net.Neurons[pre].Role == model.RoleModulatory || net.Neurons[post].Role == model.RoleModulatory {
				continue
			}
			if net.Neurons[post].Role == model.RoleInput {
				continue
			}
			prob := cfg.InterClusterProb
			if net.Neurons[pre].Cluster == net.Neurons[post].Cluster {
				prob = cfg.IntraClusterProb
			}
			if rng.Float64() >= prob {
				continue
			}
			net.Synapses = append(net.Synapses, model.Synapse{
				Pre:    pre,
				Post:   post,
				Weight: geom.UniformIn(rng, cfg.InitialWeightMin, cfg.InitialWeightMax),
			})
		}
	}
}

func computeNeighbours(net *model.Network, cfg model.Config) {
	for i := range net.Neurons {
		for j := range net.Neurons {
			if i == j {
				continue
			}
			if geom.Distance(net.Neurons[i].Position, net.Neurons[j].Position) <= cfg.AmbientRadius {
				net.Neurons[i].NeighbourIdx = append(net.Neurons[i].NeighbourIdx, j)
			}
		}
	}
}
