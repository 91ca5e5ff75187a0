// Package feature holds the self-contained converters for vendor-specific
// SQL construct families: sequences, indexes, materialized views, synonyms,
// merge/upsert forms, recursive CTEs, window-function extensions,
// pivot/unpivot, user-defined types, database links, procedural package
// calls, and date arithmetic.
//
// Converters run in a fixed total order. Name-level rewrites (synonyms,
// database links, package calls) run before statement-shape rewrites so the
// shape converters always see final object names; merge/upsert runs before
// the CTE and window converters because its expansion can introduce CTEs
// that must not be re-processed; date arithmetic runs last because earlier
// converters may emit date expressions.
//
// A converter never fails a request: a panic on malformed input is caught
// at its boundary, surfaced as a manual-review warning, and the remaining
// converters still run.
package feature

import (
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
)

// Family groups converters for rule-configuration gating.
type Family string

const (
	// FamilyDDL converters rewrite schema-object statements.
	FamilyDDL Family = "ddl"
	// FamilySyntax converters rewrite query and DML syntax.
	FamilySyntax Family = "syntax"
)

// Converter owns one SQL construct family. Applies is a cheap gate so
// simple statements skip the converter entirely.
type Converter struct {
	Name    string
	Family  Family
	Applies func(sql string) bool
	Convert func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string
}

// converters is the fixed application order. Changing it risks rule
// interference; registry_test.go guards the known overlaps.
var converters = []Converter{
	synonymConverter,
	dbLinkConverter,
	packageCallConverter,
	sequenceConverter,
	userTypeConverter,
	indexConverter,
	materializedViewConverter,
	mergeConverter,
	pivotConverter,
	recursiveCTEConverter,
	windowConverter,
	dateArithmeticConverter,
}

// Converters returns the ordered converter list.
func Converters() []Converter { return converters }

// Run applies every enabled, applicable converter in order.
func Run(sql string, src, tgt dialect.Dialect, cfg core.RuleConfig, acc *core.Accumulator) string {
	for _, c := range converters {
		if c.Family == FamilyDDL && !cfg.DDL {
			continue
		}
		if c.Family == FamilySyntax && !cfg.Syntax {
			continue
		}
		if c.Applies != nil && !c.Applies(sql) {
			continue
		}
		sql = runOne(c, sql, src, tgt, acc)
	}
	return sql
}

// runOne isolates a converter panic so one converter's failure never aborts
// the request.
func runOne(c Converter, sql string, src, tgt dialect.Dialect, acc *core.Accumulator) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = sql
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"%s converter failed on this input (%v); the affected span was left unchanged", c.Name, r)
		}
	}()
	return c.Convert(sql, src, tgt, acc)
}
