// Package pattern is the engine's pattern library: span masking so regex
// rewrites never touch string literals or comments, function-call scanning,
// statement splitting, and the per-dialect-pair function, data-type, and
// date-format mapping tables.
//
// Everything in this package is pure data or pure functions. The mapping
// tables are built once at init and are read-only afterwards, so they are
// safe to share across concurrent conversions without locking.
package pattern
