package model

import "testing"

func TestParseDirection(t *testing.T) {
	for _, valid := range []string{"a_to_b", "b_to_a"} {
		if _, err := ParseDirection(valid); err != nil {
			t.Fatalf("unexpected error for %q: %v", valid, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}

func TestDirectionOpposite(t *testing.T) {
	if DirectionAToB.Opposite() != DirectionBToA {
		t.Fatalf("opposite of a_to_b mismatch")
	}
	if DirectionBToA.Opposite() != DirectionAToB {
		t.Fatalf("opposite of b_to_a mismatch")
	}
}
