package types

import "fmt"

// TrafficLight is the three-level risk classification of an evaluation
type TrafficLight string

const (
	TrafficLightGreen  TrafficLight = "GREEN"
	TrafficLightYellow TrafficLight = "YELLOW"
	TrafficLightRed    TrafficLight = "RED"
)

// AllTrafficLights returns all valid traffic lights in ascending order of concern
func AllTrafficLights() []TrafficLight {
	return []TrafficLight{
		TrafficLightGreen,
		TrafficLightYellow,
		TrafficLightRed,
	}
}

// IsValid checks if the traffic light is valid
func (l TrafficLight) IsValid() bool {
	switch l {
	case TrafficLightGreen,
		TrafficLightYellow,
		TrafficLightRed:
		return true
	default:
		return false
	}
}

// Rank orders traffic lights: GREEN < YELLOW < RED. Invalid values rank 0.
func (l TrafficLight) Rank() int {
	switch l {
	case TrafficLightGreen:
		return 1
	case TrafficLightYellow:
		return 2
	case TrafficLightRed:
		return 3
	default:
		return 0
	}
}

// String returns the string representation of the traffic light
func (l TrafficLight) String() string {
	return string(l)
}

// ParseTrafficLight parses a string into a TrafficLight
func ParseTrafficLight(s string) (TrafficLight, error) {
	light := TrafficLight(s)
	if !light.IsValid() {
		return "", fmt.Errorf("invalid traffic light: %s", s)
	}
	return light, nil
}
