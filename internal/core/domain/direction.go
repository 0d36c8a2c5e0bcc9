package domain

import (
	"fmt"
	"strings"
)

// Direction is a one-cell step on the grid.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// ParseDirection accepts full names and their first letters.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "south", "s":
		return South, nil
	case "east", "e":
		return East, nil
	case "west", "w":
		return West, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Delta returns the lat/lng step of one move of size step.
func (d Direction) Delta(step float64) (dLat, dLng float64) {
	switch d {
	case North:
		return step, 0
	case South:
		return -step, 0
	case East:
		return 0, step
	case West:
		return 0, -step
	}
	return 0, 0
}
