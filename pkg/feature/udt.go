package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reTypeGate      = regexp.MustCompile(`(?i)(\bCREATE\s+(?:OR\s+REPLACE\s+)?TYPE\b|%(ROW)?TYPE\b)`)
	reOraObjectType = regexp.MustCompile(`(?i)\bCREATE\s+(?:OR\s+REPLACE\s+)?TYPE\s+(\S+)\s+(?:AS|IS)\s+OBJECT\s*\(`)
	reOraCollection = regexp.MustCompile(`(?im)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?TYPE\s+\S+\s+(?:AS|IS)\s+(?:VARRAY|TABLE\s+OF)\b[^;]*;?`)
	rePgComposite   = regexp.MustCompile(`(?i)\bCREATE\s+TYPE\s+(\S+)\s+AS\s*\(`)
	rePercentType   = regexp.MustCompile(`(?i)\b[\w.]+%(?:ROW)?TYPE\b`)
)

// userTypeConverter maps user-defined type declarations. Oracle object
// types and PostgreSQL composite types translate into each other; MySQL has
// neither, so type definitions headed there are stubbed with a JSON
// suggestion.
var userTypeConverter = Converter{
	Name:   "user-types",
	Family: FamilyDDL,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reTypeGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		switch {
		case src == dialect.Oracle && tgt == dialect.Postgres:
			sql = pattern.ReplaceAllFuncOutside(sql, reOraObjectType, func(match string) string {
				m := reOraObjectType.FindStringSubmatch(match)
				acc.Rule("user-type: OBJECT %s -> composite type", m[1])
				acc.Warnf(core.WarnPartialSupport, core.SeverityWarning,
					"object type %s converted to a composite type; member methods, if any, are not carried over", m[1])
				return "CREATE TYPE " + m[1] + " AS ("
			})
			sql = stubCollectionTypes(sql, acc,
				"declare the column as an array or a separate table instead")
		case src == dialect.Postgres && tgt == dialect.Oracle:
			sql = pattern.ReplaceAllFuncOutside(sql, rePgComposite, func(match string) string {
				m := rePgComposite.FindStringSubmatch(match)
				acc.Rule("user-type: composite %s -> OBJECT", m[1])
				return "CREATE TYPE " + m[1] + " AS OBJECT ("
			})
		case tgt == dialect.MySQL:
			sql = pattern.ReplaceAllFuncOutside(sql, reOraObjectType, func(match string) string {
				return stubTypeHeader(match, acc)
			})
			sql = pattern.ReplaceAllFuncOutside(sql, rePgComposite, func(match string) string {
				return stubTypeHeader(match, acc)
			})
			sql = stubCollectionTypes(sql, acc,
				"store the collection as a JSON column or a child table")
		}
		if src == dialect.Oracle && tgt != dialect.Oracle && pattern.MatchesOutside(sql, rePercentType) {
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"%%TYPE and %%ROWTYPE anchored declarations are procedural and must be replaced with explicit types")
		}
		return sql
	},
}

// stubTypeHeader comments out a type definition header for targets without
// user-defined types. Only the header line is touched; the body remains
// visible for the migrating developer.
func stubTypeHeader(match string, acc *core.Accumulator) string {
	acc.Rule("user-type: definition stubbed")
	acc.Warnf(core.WarnUnsupportedFunction, core.SeverityError,
		"user-defined types are not supported on the target; model the structure as a table or a JSON column")
	return "-- MANUAL MIGRATION REQUIRED: " + strings.TrimRight(match, "(") + "("
}

func stubCollectionTypes(sql string, acc *core.Accumulator, suggestion string) string {
	return pattern.ReplaceAllFuncOutside(sql, reOraCollection, func(match string) string {
		acc.Rule("user-type: collection type stubbed")
		acc.Warn(core.Warning{
			Kind:       core.WarnUnsupportedFunction,
			Severity:   core.SeverityError,
			Message:    "VARRAY and nested-table types cannot be translated",
			Suggestion: suggestion,
		})
		return "-- MANUAL MIGRATION REQUIRED: " + match
	})
}
