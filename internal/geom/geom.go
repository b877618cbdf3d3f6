package geom

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// Point is a position in the 3D space neurons are laid out in.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Jitter returns a point scattered uniformly around center within spread
// on every axis.
func Jitter(rng *rand.Rand, center Point, spread float64) Point {
	return Point{
		X: center.X + (rng.Float64()*2-1)*spread,
		Y: center.Y + (rng.Float64()*2-1)*spread,
		Z: center.Z + (rng.Float64()*2-1)*spread,
	}
}

// UniformIn returns a value drawn uniformly from [low, high).
func UniformIn(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}

// NeuronID builds the stable id for the neuron at index within a cluster.
func NeuronID(cluster, index int) string {
	return fmt.Sprintf("c%d-n%d", cluster, index)
}

// RunID returns a fresh unique identifier for a run or experiment.
func RunID() string {
	return uuid.NewString()
}
