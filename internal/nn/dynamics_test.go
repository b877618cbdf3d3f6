package nn

import (
	"math"
	"testing"

	"synapsis/internal/geom"
	"synapsis/internal/model"
)

// chainNet wires input -> hidden -> output in a line, one unit apart.
func chainNet(threshold float64) *model.Network {
	net := &model.Network{
		Neurons: []model.Neuron{
			{ID: "c0-n0", Position: geom.Point{X: 0}, Role: model.RoleInput, Cluster: 0},
			{ID: "c0-n1", Position: geom.Point{X: 1}, Role: model.RoleRegular, Cluster: 0},
			{ID: "c1-n0", Position: geom.Point{X: 2}, Role: model.RoleOutput, Cluster: 1},
		},
		States: []model.NeuronState{
			{Threshold: threshold}, {Threshold: threshold}, {Threshold: threshold},
		},
		Synapses: []model.Synapse{
			{Pre: 0, Post: 1, Weight: 1},
			{Pre: 1, Post: 2, Weight: 1},
		},
		Inputs:  []int{0},
		Outputs: []int{2},
		Config:  model.Config{}.Normalize(),
	}
	net.Neurons[0].NeighbourIdx = []int{1}
	net.Neurons[1].NeighbourIdx = []int{0, 2}
	net.Neurons[2].NeighbourIdx = []int{1}
	return net
}

func TestClampInputs(t *testing.T) {
	net := chainNet(0.5)

	if err := ClampInputs(net, []float64{1}); err != nil {
		t.Fatalf("clamp inputs: %v", err)
	}
	if net.States[0].Output != 1 || !net.States[0].Fired {
		t.Fatalf("input not clamped on: output=%f fired=%v", net.States[0].Output, net.States[0].Fired)
	}

	if err := ClampInputs(net, []float64{0}); err != nil {
		t.Fatalf("clamp inputs: %v", err)
	}
	if net.States[0].Output != 0 || net.States[0].Fired {
		t.Fatalf("input not clamped off: output=%f fired=%v", net.States[0].Output, net.States[0].Fired)
	}
}

func TestClampInputsLengthMismatch(t *testing.T) {
	net := chainNet(0.5)
	if err := ClampInputs(net, []float64{1, 0}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestFireThresholdInclusive(t *testing.T) {
	// Weighted sum exactly equal to the threshold fires (strict >=).
	net := chainNet(1.0)
	if err := ClampInputs(net, []float64{1}); err != nil {
		t.Fatalf("clamp inputs: %v", err)
	}

	Fire(net)
	if !net.States[1].Fired {
		t.Fatalf("sum equal to threshold must fire")
	}

	net.States[1].Threshold = 1.0000001
	Fire(net)
	if net.States[1].Fired {
		t.Fatalf("sum below threshold must not fire")
	}
}

func TestFirePropagatesOnePassPerCall(t *testing.T) {
	net := chainNet(0.5)
	if err := ClampInputs(net, []float64{1}); err != nil {
		t.Fatalf("clamp inputs: %v", err)
	}

	// Transitions are simultaneous: the output sees the hidden neuron's
	// pre-pass value on the first call and its new value on the second.
	Fire(net)
	if !net.States[1].Fired {
		t.Fatalf("hidden neuron must fire on pass 1")
	}
	if net.States[2].Fired {
		t.Fatalf("output must not fire before activity reaches it")
	}
	Fire(net)
	if !net.States[2].Fired {
		t.Fatalf("output must fire on pass 2")
	}
}

func TestUpdateStatistics(t *testing.T) {
	net := chainNet(0.5)
	net.States[1].Fired = true

	UpdateStatistics(net)
	UpdateStatistics(net)
	net.States[1].Fired = false
	UpdateStatistics(net)

	s := net.States[1]
	if s.CycleCount != 3 || s.FireCount != 2 {
		t.Fatalf("unexpected counts: cycles=%d fires=%d", s.CycleCount, s.FireCount)
	}
	if math.Abs(s.FireRate-2.0/3.0) > 1e-15 {
		t.Fatalf("unexpected fire rate: got=%f want=%f", s.FireRate, 2.0/3.0)
	}
	// Inputs never accumulate statistics.
	if net.States[0].CycleCount != 0 {
		t.Fatalf("input neuron accumulated cycles: %d", net.States[0].CycleCount)
	}
}

func TestFireRateZeroCycles(t *testing.T) {
	if got := fireRate(0, 0); got != 0 {
		t.Fatalf("fire rate with no cycles must be 0, got=%f", got)
	}
}

func TestRegulateThreshold(t *testing.T) {
	state := model.NeuronState{Threshold: 1.0, FireRate: 0.5}

	RegulateThreshold(&state, 0.3, 0.05)
	if state.Threshold != 1.05 {
		t.Fatalf("overactive neuron must raise threshold: got=%f want=1.05", state.Threshold)
	}

	state.FireRate = 0.1
	RegulateThreshold(&state, 0.3, 0.05)
	if state.Threshold != 1.0 {
		t.Fatalf("underactive neuron must lower threshold: got=%f want=1.0", state.Threshold)
	}

	state.FireRate = 0.3
	RegulateThreshold(&state, 0.3, 0.05)
	if state.Threshold != 1.0 {
		t.Fatalf("on-target neuron must hold threshold: got=%f", state.Threshold)
	}
}

func TestRegulateSkipsFixedOutputs(t *testing.T) {
	net := chainNet(0.5)
	net.Config.FixedOutputThreshold = true
	net.States[1].FireRate = 1
	net.States[2].FireRate = 1

	Regulate(net)
	if net.States[2].Threshold != 0.5 {
		t.Fatalf("output threshold moved despite fixed toggle: got=%f", net.States[2].Threshold)
	}
	if net.States[1].Threshold == 0.5 {
		t.Fatalf("hidden threshold should have moved")
	}
}

func TestUpdateAmbient(t *testing.T) {
	net := chainNet(0.5)
	net.States[0].Output = 1
	net.States[2].Output = 1

	UpdateAmbient(net)
	// Hidden neuron: both neighbours active at distance 1 each.
	if net.States[1].Ambient != 2 {
		t.Fatalf("unexpected ambient: got=%f want=2", net.States[1].Ambient)
	}
	// Input neuron: its only neighbour (the hidden one) is silent.
	if net.States[0].Ambient != 0 {
		t.Fatalf("unexpected ambient: got=%f want=0", net.States[0].Ambient)
	}
}
