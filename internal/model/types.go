package model

import "synapsis/internal/geom"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type Role string

const (
	RoleInput      Role = "input"
	RoleOutput     Role = "output"
	RoleModulatory Role = "modulatory"
	RoleRegular    Role = "regular"
)

// Neuron is structural and never mutated after the network is built.
// NeighbourIdx holds the indices of every other neuron within the
// configured ambient radius, precomputed once by the topology builder.
type Neuron struct {
	ID           string     `json:"id"`
	Position     geom.Point `json:"position"`
	Role         Role       `json:"role"`
	Cluster      int        `json:"cluster"`
	NeighbourIdx []int      `json:"neighbour_idx"`
}

// NeuronState is the mutable per-neuron side of the simulation.
// FireRate is always FireCount/CycleCount, recomputed after any count
// change, and 0 while CycleCount is 0.
type NeuronState struct {
	Output     float64 `json:"output"`
	Fired      bool    `json:"fired"`
	FireCount  int     `json:"fire_count"`
	CycleCount int     `json:"cycle_count"`
	FireRate   float64 `json:"fire_rate"`
	Threshold  float64 `json:"threshold"`
	Ambient    float64 `json:"ambient"`
}

// Synapse is a directed connection. Pre and Post index into the network's
// neuron table. Trace is recomputed fresh every step; Chemical accumulates
// within a step and decays geometrically at its end.
type Synapse struct {
	Pre             int     `json:"pre"`
	Post            int     `json:"post"`
	Weight          float64 `json:"weight"`
	Trace           float64 `json:"trace"`
	ActivityHistory float64 `json:"activity_history"`
	Chemical        float64 `json:"chemical"`

	// Flag gating state. FlagStrength is bounded to [-1, 1].
	FlagStrength    float64 `json:"flag_strength"`
	ConsistentCount int     `json:"consistent_count"`
	LastTraceSign   int     `json:"last_trace_sign"`

	// Frustration tracking state.
	LastDeltaSign      int     `json:"last_delta_sign"`
	SameDirectionCount int     `json:"same_direction_count"`
	DirectionChemEMA   float64 `json:"direction_chem_ema"`
	FlipCount          int     `json:"flip_count"`
}

// Network is the aggregate built once per run: structural neuron table,
// mutable state table (index-aligned with Neurons), synapse list, and the
// configuration it was built from. Inputs, Outputs and Modulatory hold
// neuron indices by role.
type Network struct {
	Neurons    []Neuron      `json:"neurons"`
	States     []NeuronState `json:"states"`
	Synapses   []Synapse     `json:"synapses"`
	Inputs     []int         `json:"inputs"`
	Outputs    []int         `json:"outputs"`
	Modulatory []int         `json:"modulatory"`
	Config     Config        `json:"config"`
}

// Pattern pairs a binary input vector with its binary target vector.
type Pattern struct {
	Input  []float64 `json:"input"`
	Target []float64 `json:"target"`
}

// StepMetrics is the per-training-step summary returned by the engine.
type StepMetrics struct {
	Episode             int     `json:"episode"`
	Accuracy            float64 `json:"accuracy"`
	Loss                float64 `json:"loss"`
	MeanAbsWeight       float64 `json:"mean_abs_weight"`
	MeanFireRate        float64 `json:"mean_fire_rate"`
	MeanThreshold       float64 `json:"mean_threshold"`
	ActiveTraceFraction float64 `json:"active_trace_fraction"`
}

// EvalResult is the side-effect-free scoring contract.
type EvalResult struct {
	Outputs  []float64 `json:"outputs"`
	Accuracy float64   `json:"accuracy"`
	Loss     float64   `json:"loss"`
}

// RunRecord describes one completed seed run. Only results are persisted;
// the network itself is transient and never stored.
type RunRecord struct {
	VersionedRecord
	RunID         string  `json:"run_id"`
	ExperimentID  string  `json:"experiment_id,omitempty"`
	Condition     string  `json:"condition"`
	Seed          int64   `json:"seed"`
	Episodes      int     `json:"episodes"`
	Config        Config  `json:"config"`
	FinalAccuracy float64 `json:"final_accuracy"`
	FinalLoss     float64 `json:"final_loss"`
	CreatedAtUTC  string  `json:"created_at_utc"`
}

// ExperimentRecord groups the runs of one experiment across conditions.
type ExperimentRecord struct {
	VersionedRecord
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Conditions   []string `json:"conditions"`
	RunIDs       []string `json:"run_ids"`
	CreatedAtUTC string   `json:"created_at_utc"`
}
