package core

// WarningKind categorizes what a warning is about.
type WarningKind string

const (
	// WarnUnsupportedFunction flags a source construct with no target analog.
	WarnUnsupportedFunction WarningKind = "unsupported-function"
	// WarnSyntaxDifference flags a translation that changes syntax shape.
	WarnSyntaxDifference WarningKind = "syntax-difference"
	// WarnManualReview flags a span that needs a human decision.
	WarnManualReview WarningKind = "manual-review"
	// WarnPerformance flags a pattern likely to perform poorly on the target.
	WarnPerformance WarningKind = "performance"
	// WarnDataTypeMismatch flags a type mapping that is not exact.
	WarnDataTypeMismatch WarningKind = "data-type-mismatch"
	// WarnPartialSupport flags a construct only partially translated.
	WarnPartialSupport WarningKind = "partial-support"
)

// Warning describes a lossy or approximate translation decision.
type Warning struct {
	Kind       WarningKind `json:"kind" yaml:"kind"`
	Message    string      `json:"message" yaml:"message"`
	Severity   Severity    `json:"severity" yaml:"severity"`
	Suggestion string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Line       int         `json:"line,omitempty" yaml:"line,omitempty"`
}
