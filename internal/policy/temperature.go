package policy

import "github.com/davidbz/cinder/internal/domain"

const (
	// TemperatureCreative is used for prompts with creative hints.
	TemperatureCreative = 0.7
	// TemperatureFactual is used for prompts with factual hints.
	TemperatureFactual = 0.3
	// TemperatureDefault is used when no hint set matches.
	TemperatureDefault = 0.4
)

// SelectTemperature maps a classification to a sampling temperature.
// First match wins: creative is checked before factual, so a prompt
// matching both gets the creative temperature.
func SelectTemperature(cls domain.Classification) float64 {
	switch {
	case cls.Creative:
		return TemperatureCreative
	case cls.Factual:
		return TemperatureFactual
	default:
		return TemperatureDefault
	}
}
