package buddy

import "testing"

func TestInferMaturityFromPoints(t *testing.T) {
	inf := InferAction(&Input{PositivePoints: []string{"x"}}, "")
	if inf.Action != ActionMaturity {
		t.Errorf("got %q, want %q", inf.Action, ActionMaturity)
	}
	if inf.Warning != "" {
		t.Errorf("unexpected warning: %s", inf.Warning)
	}
}

func TestInferLocationFromAddresses(t *testing.T) {
	inf := InferAction(&Input{Addresses: []AddressEntry{{Address: "y"}}}, "")
	if inf.Action != ActionLocation {
		t.Errorf("got %q, want %q", inf.Action, ActionLocation)
	}
}

func TestInferNoSignalsReturnsFallback(t *testing.T) {
	inf := InferAction(&Input{}, ActionMaturity)
	if inf.Action != ActionMaturity {
		t.Errorf("got %q, want fallback", inf.Action)
	}

	inf = InferAction(&Input{}, "")
	if inf.Action != "" {
		t.Errorf("no fallback should yield empty action, got %q", inf.Action)
	}
}

func TestInferHigherCountWinsWithWarning(t *testing.T) {
	in := &Input{
		Addresses:      []AddressEntry{{Address: "1 Main St"}},
		Price:          numPtr(100),
		Surface:        strPtr("50m²"),
		PositivePoints: []string{"x"},
	}
	inf := InferAction(in, "")
	if inf.Action != ActionLocation {
		t.Errorf("location has more signals, got %q", inf.Action)
	}
	if inf.Warning == "" {
		t.Error("expected a both-families warning")
	}
}

func TestInferTieFallsBackToConfiguredDefault(t *testing.T) {
	in := &Input{
		Addresses:      []AddressEntry{{Address: "1 Main St"}},
		PositivePoints: []string{"x"},
	}

	inf := InferAction(in, ActionMaturity)
	if inf.Action != ActionMaturity {
		t.Errorf("tie should use configured default, got %q", inf.Action)
	}
	if inf.Warning == "" {
		t.Error("expected a tie warning")
	}
}

func TestInferTieWithoutDefaultYieldsNoAction(t *testing.T) {
	in := &Input{
		Addresses:      []AddressEntry{{Address: "1 Main St"}},
		PositivePoints: []string{"x"},
	}

	inf := InferAction(in, "")
	if inf.Action != "" {
		t.Errorf("tie without default must not guess, got %q", inf.Action)
	}
	if inf.Warning == "" {
		t.Error("expected a warning about the unresolved tie")
	}
}
