package core

import "fmt"

// Severity classifies how seriously a warning should be taken.
type Severity int

const (
	// SeverityInfo is informational; the conversion is believed correct.
	SeverityInfo Severity = iota
	// SeverityWarning means the output is usable but should be reviewed.
	SeverityWarning
	// SeverityError means the affected span could not be converted reliably.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so severities render as
// their names in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so persisted warnings
// decode back to the typed severity.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}
