package geom

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistance(t *testing.T) {
	a := Point{X: 1, Y: 2, Z: 3}
	b := Point{X: 4, Y: 6, Z: 3}
	if got := Distance(a, b); got != 5 {
		t.Fatalf("unexpected distance: got=%f want=5", got)
	}
	if got := Distance(a, a); got != 0 {
		t.Fatalf("unexpected self distance: got=%f want=0", got)
	}
}

func TestJitterStaysWithinSpread(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	center := Point{X: 10, Y: -5, Z: 2}
	for i := 0; i < 100; i++ {
		p := Jitter(rng, center, 3)
		if math.Abs(p.X-center.X) > 3 || math.Abs(p.Y-center.Y) > 3 || math.Abs(p.Z-center.Z) > 3 {
			t.Fatalf("jitter escaped spread: %+v", p)
		}
	}
}

func TestUniformInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := UniformIn(rng, -0.5, 0.5)
		if v < -0.5 || v >= 0.5 {
			t.Fatalf("value out of range: got=%f", v)
		}
	}
}

func TestNeuronID(t *testing.T) {
	if got := NeuronID(2, 14); got != "c2-n14" {
		t.Fatalf("unexpected neuron id: got=%s", got)
	}
}

func TestRunIDUnique(t *testing.T) {
	if RunID() == RunID() {
		t.Fatal("run ids must be unique")
	}
}
