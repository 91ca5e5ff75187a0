// Package core defines the shared data model for the conversion engine:
// warnings, applied-rule provenance, rule configuration profiles, and
// statement complexity metrics. All types here are plain values created per
// request; nothing in this package holds state across conversions.
package core
