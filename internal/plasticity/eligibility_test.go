package plasticity

import (
	"testing"

	"synapsis/internal/model"
)

func eligibilityConfig() model.Config {
	return model.Config{
		CoActivationStrength: 1.0,
		CoSilenceStrength:    0.1,
		MismatchStrength:     -0.5,
		AmbientThreshold:     0.2,
	}
}

func TestComputeEligibilityQuadrants(t *testing.T) {
	cfg := eligibilityConfig()

	cases := []struct {
		name      string
		pre, post bool
		ambient   float64
		want      float64
	}{
		{"co_activation", true, true, 0, 1.0},
		{"mismatch_pre_only", true, false, 5.0, -0.5},
		{"mismatch_post_only", false, true, 5.0, -0.5},
		{"co_silence_active_neighbourhood", false, false, 0.3, 0.1},
		{"co_silence_quiet_neighbourhood", false, false, 0.1, 0},
	}
	for _, tc := range cases {
		got := ComputeEligibility(tc.pre, tc.post, tc.ambient, cfg)
		if got != tc.want {
			t.Fatalf("%s: unexpected trace: got=%f want=%f", tc.name, got, tc.want)
		}
	}
}

func TestComputeEligibilityAmbientBoundary(t *testing.T) {
	cfg := eligibilityConfig()

	// Field exactly equal to the threshold earns no co-silence bonus.
	if got := ComputeEligibility(false, false, cfg.AmbientThreshold, cfg); got != 0 {
		t.Fatalf("boundary equality must yield 0, got=%f", got)
	}
}

func TestUpdateActivityHistory(t *testing.T) {
	s := model.Synapse{ActivityHistory: 0.5}

	UpdateActivityHistory(&s, true, 0.9)
	// 0.9*0.5 + 0.1*1 = 0.55
	if s.ActivityHistory != 0.55 {
		t.Fatalf("unexpected history after active step: got=%f want=0.55", s.ActivityHistory)
	}

	UpdateActivityHistory(&s, false, 0.9)
	if s.ActivityHistory != 0.9*0.55 {
		t.Fatalf("unexpected history after idle step: got=%f want=%f", s.ActivityHistory, 0.9*0.55)
	}
}
