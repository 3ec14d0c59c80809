package types

const (
	SeverityNone = 0
	SeverityMax  = 3
)

// ClampSeverity maps any tagged severity into [SeverityNone, SeverityMax].
// Out-of-range values are clamped, never rejected.
func ClampSeverity(s int) int {
	switch {
	case s < SeverityNone:
		return SeverityNone
	case s > SeverityMax:
		return SeverityMax
	default:
		return s
	}
}

// IsThresholdSeverity reports whether s can be used as a presence or hard rule threshold (1..3)
func IsThresholdSeverity(s int) bool {
	return s >= 1 && s <= SeverityMax
}
