package core

import "fmt"

// Accumulator collects warnings and applied-rule provenance for one
// conversion. It is a plain value owned by a single goroutine; the
// orchestrator merges per-chunk accumulators in chunk order, so no locking
// is needed anywhere.
type Accumulator struct {
	Rules    []string
	Warnings []Warning
}

// Rule records an applied-rule entry. Entries are insertion-ordered and not
// deduplicated; the same rule may legitimately fire many times.
func (a *Accumulator) Rule(format string, args ...any) {
	a.Rules = append(a.Rules, fmt.Sprintf(format, args...))
}

// Warn records a warning.
func (a *Accumulator) Warn(w Warning) {
	a.Warnings = append(a.Warnings, w)
}

// Warnf records a warning with a formatted message.
func (a *Accumulator) Warnf(kind WarningKind, sev Severity, format string, args ...any) {
	a.Warnings = append(a.Warnings, Warning{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

// Merge appends another accumulator's entries, preserving order.
func (a *Accumulator) Merge(other Accumulator) {
	a.Rules = append(a.Rules, other.Rules...)
	a.Warnings = append(a.Warnings, other.Warnings...)
}
