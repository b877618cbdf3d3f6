package plasticity

// ActivityDampening scales a trace down proportionally when the synapse's
// participation average sits below the configured floor; at or above the
// floor the trace passes at full strength.
func ActivityDampening(history, minimum float64) float64 {
	if minimum <= 0 || history >= minimum {
		return 1
	}
	return history / minimum
}

// InformationDampening is the inverted-U on the post neuron's fire rate:
// 4r(1-r), peaking at 1 for r = 0.5 and vanishing at the extremes, where
// an always-on or always-off neuron carries no information.
func InformationDampening(fireRate float64) float64 {
	return 4 * fireRate * (1 - fireRate)
}

// AmbientDampening weights the trace by spatial relevance. Firing counts
// at half strength in a quiet neighbourhood; silence in a quiet
// neighbourhood counts for nothing at all.
func AmbientDampening(postFired bool, ambient, threshold float64) float64 {
	active := ambient > threshold
	if postFired {
		if active {
			return 1
		}
		return 0.5
	}
	if active {
		return 1
	}
	return 0
}
