package buddy

import "fmt"

// Inference is the outcome of heuristic action detection.
type Inference struct {
	Action  Action
	Warning string
}

// InferAction decides which payload shape an input targets when no action was
// given. Presence of any field from one family is a signal for that family;
// when both families are populated the one with more populated fields wins,
// and a tie falls back to the configured default action.
//
// This is a deliberately simple heuristic, not a classifier. Near-ties can
// misclassify; callers get a warning whenever both families were detected.
func InferAction(in *Input, fallback Action) Inference {
	loc := locationSignals(in)
	mat := maturitySignals(in)

	switch {
	case loc > 0 && mat == 0:
		return Inference{Action: ActionLocation}
	case mat > 0 && loc == 0:
		return Inference{Action: ActionMaturity}
	case loc == 0 && mat == 0:
		return Inference{Action: fallback}
	}

	if loc > mat {
		return Inference{
			Action:  ActionLocation,
			Warning: fmt.Sprintf("both location and project-maturity fields detected (%d vs %d); proceeding as location", loc, mat),
		}
	}
	if mat > loc {
		return Inference{
			Action:  ActionMaturity,
			Warning: fmt.Sprintf("both location and project-maturity fields detected (%d vs %d); proceeding as project-maturity", mat, loc),
		}
	}

	// Tie. Without a configured default there is nothing safe to pick; the
	// pipeline rejects the request rather than guessing.
	if fallback == "" {
		return Inference{Warning: "both location and project-maturity fields detected in equal measure and no default action is configured"}
	}
	return Inference{
		Action:  fallback,
		Warning: fmt.Sprintf("both location and project-maturity fields detected in equal measure; falling back to configured default %q", fallback),
	}
}

func locationSignals(in *Input) int {
	n := 0
	if len(in.Addresses) > 0 {
		n++
	}
	if in.Address != nil {
		n++
	}
	if in.Price != nil {
		n++
	}
	if in.Surface != nil {
		n++
	}
	if in.LocationType != nil {
		n++
	}
	return n
}

func maturitySignals(in *Input) int {
	n := 0
	if in.MaturityLevel != nil {
		n++
	}
	if in.MaturityPercentage != nil {
		n++
	}
	if len(in.PositivePoints) > 0 {
		n++
	}
	if len(in.NegativePoints) > 0 {
		n++
	}
	if in.Description != nil {
		n++
	}
	return n
}
