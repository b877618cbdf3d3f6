package model

import "fmt"

// Falloff selects the distance law used when a chemical source reaches a
// synapse at distance d.
type Falloff string

const (
	FalloffInverse       Falloff = "inverse"        // 1/d
	FalloffInverseSquare Falloff = "inverse_square" // 1/d^2
	FalloffLinear        Falloff = "linear"         // max(0, 1 - d/radius)
	FalloffConstant      Falloff = "constant"       // 1
)

// PlasticityMode selects how the per-step eligibility trace becomes the
// effective trace used by the weight update. The mode is fixed when the
// engine is built, never re-derived mid-run.
type PlasticityMode string

const (
	// PlasticityRaw uses the (dampened) trace directly.
	PlasticityRaw PlasticityMode = "raw"
	// PlasticitySimpleFlag accumulates any nonzero trace into flag strength.
	PlasticitySimpleFlag PlasticityMode = "simple_flag"
	// PlasticityConsistentFlag requires a streak of same-sign traces before
	// flag strength may grow.
	PlasticityConsistentFlag PlasticityMode = "consistent_flag"
)

// Config carries every knob of the simulation. Zero values mean "use the
// documented default"; Normalize applies them. Feature toggles follow the
// convention that a zero-valued parameter disables the feature
// (FrustrationWindow, FlagStrengthThreshold, ChemicalRadiusMinimum,
// RewardShapingWindow, RewardExponent).
type Config struct {
	// Network shape.
	ClusterCount         int     `json:"cluster_count" yaml:"cluster_count"`
	NeuronsPerCluster    int     `json:"neurons_per_cluster" yaml:"neurons_per_cluster"`
	HiddenClusterNeurons int     `json:"hidden_cluster_neurons,omitempty" yaml:"hidden_cluster_neurons"` // clusters beyond the first two; 0 = same as NeuronsPerCluster
	ModulatoryPerCluster int     `json:"modulatory_per_cluster" yaml:"modulatory_per_cluster"`
	IntraClusterProb     float64 `json:"intra_cluster_prob" yaml:"intra_cluster_prob"`
	InterClusterProb     float64 `json:"inter_cluster_prob" yaml:"inter_cluster_prob"`
	ClusterSpacing       float64 `json:"cluster_spacing" yaml:"cluster_spacing"`
	ClusterSpread        float64 `json:"cluster_spread" yaml:"cluster_spread"`
	InputSize            int     `json:"input_size" yaml:"input_size"`
	OutputSize           int     `json:"output_size" yaml:"output_size"`
	InitialWeightMin     float64 `json:"initial_weight_min" yaml:"initial_weight_min"`
	InitialWeightMax     float64 `json:"initial_weight_max" yaml:"initial_weight_max"`

	// Neuron dynamics.
	InitialThreshold     float64 `json:"initial_threshold" yaml:"initial_threshold"`
	TargetFireRate       float64 `json:"target_fire_rate" yaml:"target_fire_rate"`
	ThresholdAdjustRate  float64 `json:"threshold_adjust_rate" yaml:"threshold_adjust_rate"`
	FixedOutputThreshold bool    `json:"fixed_output_threshold" yaml:"fixed_output_threshold"`
	PropagationCycles    int     `json:"propagation_cycles" yaml:"propagation_cycles"`

	// Eligibility.
	CoActivationStrength float64 `json:"co_activation_strength" yaml:"co_activation_strength"`
	CoSilenceStrength    float64 `json:"co_silence_strength" yaml:"co_silence_strength"`
	MismatchStrength     float64 `json:"mismatch_strength" yaml:"mismatch_strength"`
	AmbientThreshold     float64 `json:"ambient_threshold" yaml:"ambient_threshold"`
	AmbientRadius        float64 `json:"ambient_radius" yaml:"ambient_radius"`

	// Flag gating. FlagStrengthThreshold <= 0 leaves gating off even when
	// a flag mode accumulates strength.
	Plasticity            PlasticityMode `json:"plasticity" yaml:"plasticity"`
	FlagStrengthGain      float64        `json:"flag_strength_gain" yaml:"flag_strength_gain"`
	FlagDecayRate         float64        `json:"flag_decay_rate" yaml:"flag_decay_rate"`
	FlagStrengthThreshold float64        `json:"flag_strength_threshold" yaml:"flag_strength_threshold"`
	FlagGateWarmup        int            `json:"flag_gate_warmup" yaml:"flag_gate_warmup"`
	ConsistencyThreshold  int            `json:"consistency_threshold" yaml:"consistency_threshold"`
	FlagDecayOnFlip       float64        `json:"flag_decay_on_flip" yaml:"flag_decay_on_flip"`

	// Dampening.
	ActivityHistoryDecay   float64 `json:"activity_history_decay" yaml:"activity_history_decay"`
	ActivityHistoryMinimum float64 `json:"activity_history_minimum" yaml:"activity_history_minimum"`
	SkipDampening          bool    `json:"skip_dampening" yaml:"skip_dampening"`

	// Chemical reward.
	ChemicalDiffusionRadius float64 `json:"chemical_diffusion_radius" yaml:"chemical_diffusion_radius"`
	ChemicalRadiusMinimum   float64 `json:"chemical_radius_minimum" yaml:"chemical_radius_minimum"` // > 0 anneals the radius toward this
	ChemicalFalloff         Falloff `json:"chemical_falloff" yaml:"chemical_falloff"`
	ChemicalDecayRate       float64 `json:"chemical_decay_rate" yaml:"chemical_decay_rate"`
	PositiveRewardStrength  float64 `json:"positive_reward_strength" yaml:"positive_reward_strength"`
	NegativeRewardStrength  float64 `json:"negative_reward_strength" yaml:"negative_reward_strength"`
	PerBitReward            bool    `json:"per_bit_reward" yaml:"per_bit_reward"`
	ModulatoryCycling       bool    `json:"modulatory_cycling" yaml:"modulatory_cycling"`
	RewardExponent          float64 `json:"reward_exponent" yaml:"reward_exponent"`             // 0 = linear
	RewardShapingWindow     int     `json:"reward_shaping_window" yaml:"reward_shaping_window"` // episodes; > 0 blends linear toward squared

	// Weight update.
	LearningRate       float64 `json:"learning_rate" yaml:"learning_rate"`
	MaxWeightDelta     float64 `json:"max_weight_delta" yaml:"max_weight_delta"`
	MaxWeightMagnitude float64 `json:"max_weight_magnitude" yaml:"max_weight_magnitude"`
	WeightDecay        float64 `json:"weight_decay" yaml:"weight_decay"`

	// Frustration. FrustrationWindow == 0 disables the detector.
	FrustrationWindow       int     `json:"frustration_window" yaml:"frustration_window"`
	FrustrationThreshold    float64 `json:"frustration_threshold" yaml:"frustration_threshold"`
	FrustrationFlipStrength float64 `json:"frustration_flip_strength" yaml:"frustration_flip_strength"`

	// Provisional weight commits with next-step rollback.
	ProvisionalWeights bool `json:"provisional_weights" yaml:"provisional_weights"`
}

// Normalize fills unset fields with the documented defaults and returns the
// completed config. It never mutates the receiver.
func (c Config) Normalize() Config {
	out := c
	if out.ClusterCount == 0 {
		out.ClusterCount = 2
	}
	if out.NeuronsPerCluster == 0 {
		out.NeuronsPerCluster = 20
	}
	if out.IntraClusterProb == 0 {
		out.IntraClusterProb = 0.3
	}
	if out.InterClusterProb == 0 {
		out.InterClusterProb = 0.1
	}
	if out.ClusterSpacing == 0 {
		out.ClusterSpacing = 10
	}
	if out.ClusterSpread == 0 {
		out.ClusterSpread = 3
	}
	if out.InputSize == 0 {
		out.InputSize = 4
	}
	if out.OutputSize == 0 {
		out.OutputSize = 2
	}
	if out.InitialWeightMin == 0 && out.InitialWeightMax == 0 {
		out.InitialWeightMin = -0.5
		out.InitialWeightMax = 0.5
	}
	if out.InitialThreshold == 0 {
		out.InitialThreshold = 0.5
	}
	if out.TargetFireRate == 0 {
		out.TargetFireRate = 0.3
	}
	if out.ThresholdAdjustRate == 0 {
		out.ThresholdAdjustRate = 0.01
	}
	if out.PropagationCycles == 0 {
		out.PropagationCycles = 1
	}
	if out.CoActivationStrength == 0 {
		out.CoActivationStrength = 1.0
	}
	if out.CoSilenceStrength == 0 {
		out.CoSilenceStrength = 0.1
	}
	if out.MismatchStrength == 0 {
		out.MismatchStrength = -0.5
	}
	if out.AmbientThreshold == 0 {
		out.AmbientThreshold = 0.1
	}
	if out.AmbientRadius == 0 {
		out.AmbientRadius = 5
	}
	if out.Plasticity == "" {
		out.Plasticity = PlasticityRaw
	}
	if out.FlagStrengthGain == 0 {
		out.FlagStrengthGain = 0.1
	}
	if out.FlagDecayRate == 0 {
		out.FlagDecayRate = 0.95
	}
	if out.ConsistencyThreshold == 0 {
		out.ConsistencyThreshold = 3
	}
	if out.FlagDecayOnFlip == 0 {
		out.FlagDecayOnFlip = 0.5
	}
	if out.ActivityHistoryDecay == 0 {
		out.ActivityHistoryDecay = 0.99
	}
	if out.ActivityHistoryMinimum == 0 {
		out.ActivityHistoryMinimum = 0.01
	}
	if out.ChemicalDiffusionRadius == 0 {
		out.ChemicalDiffusionRadius = 15
	}
	if out.ChemicalFalloff == "" {
		out.ChemicalFalloff = FalloffInverse
	}
	if out.ChemicalDecayRate == 0 {
		out.ChemicalDecayRate = 0.8
	}
	if out.PositiveRewardStrength == 0 {
		out.PositiveRewardStrength = 1.0
	}
	if out.NegativeRewardStrength == 0 {
		out.NegativeRewardStrength = 1.0
	}
	if out.LearningRate == 0 {
		out.LearningRate = 0.01
	}
	if out.MaxWeightDelta == 0 {
		out.MaxWeightDelta = 0.1
	}
	if out.MaxWeightMagnitude == 0 {
		out.MaxWeightMagnitude = 3.0
	}
	if out.FrustrationThreshold == 0 {
		out.FrustrationThreshold = -0.1
	}
	if out.FrustrationFlipStrength == 0 {
		out.FrustrationFlipStrength = 0.5
	}
	return out
}

// Validate rejects configurations the builder cannot honor.
func (c Config) Validate() error {
	if c.ClusterCount < 2 {
		return fmt.Errorf("cluster count must be >= 2, got %d", c.ClusterCount)
	}
	if c.InputSize <= 0 || c.OutputSize <= 0 {
		return fmt.Errorf("input and output sizes must be > 0, got input=%d output=%d", c.InputSize, c.OutputSize)
	}
	regular := c.NeuronsPerCluster - c.ModulatoryPerCluster
	if regular < c.InputSize {
		return fmt.Errorf("cluster 0 has %d regular neurons, need >= %d inputs", regular, c.InputSize)
	}
	if regular < c.OutputSize {
		return fmt.Errorf("cluster 1 has %d regular neurons, need >= %d outputs", regular, c.OutputSize)
	}
	if c.HiddenClusterNeurons > 0 && c.HiddenClusterNeurons <= c.ModulatoryPerCluster {
		return fmt.Errorf("hidden clusters have %d neurons, need > %d modulatory", c.HiddenClusterNeurons, c.ModulatoryPerCluster)
	}
	if c.IntraClusterProb < 0 || c.IntraClusterProb > 1 || c.InterClusterProb < 0 || c.InterClusterProb > 1 {
		return fmt.Errorf("connection probabilities must be in [0, 1]")
	}
	if c.InitialWeightMax < c.InitialWeightMin {
		return fmt.Errorf("initial weight range inverted: [%f, %f]", c.InitialWeightMin, c.InitialWeightMax)
	}
	switch c.ChemicalFalloff {
	case FalloffInverse, FalloffInverseSquare, FalloffLinear, FalloffConstant:
	default:
		return fmt.Errorf("unsupported chemical falloff: %s", c.ChemicalFalloff)
	}
	switch c.Plasticity {
	case PlasticityRaw, PlasticitySimpleFlag, PlasticityConsistentFlag:
	default:
		return fmt.Errorf("unsupported plasticity mode: %s", c.Plasticity)
	}
	if c.PropagationCycles < 1 {
		return fmt.Errorf("propagation cycles must be >= 1, got %d", c.PropagationCycles)
	}
	return nil
}
