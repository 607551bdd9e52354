package model

import "fmt"

// Direction identifies which side of the pair is being sold.
type Direction string

const (
	// DirectionAToB sells asset A for asset B.
	DirectionAToB Direction = "a_to_b"
	// DirectionBToA sells asset B for asset A.
	DirectionBToA Direction = "b_to_a"
)

// ParseDirection validates a direction string.
func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case DirectionAToB, DirectionBToA:
		return Direction(value), nil
	default:
		return "", fmt.Errorf("unknown direction: %q", value)
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == DirectionAToB {
		return DirectionBToA
	}
	return DirectionAToB
}
