package translate

import (
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

// DataTypes rewrites mapped data-type spellings for the dialect pair.
// Precision and scale are preserved verbatim by the table patterns.
func DataTypes(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
	for _, m := range pattern.TypesFor(src, tgt) {
		out := pattern.ReplaceAllOutside(sql, m.Pattern, m.Replacement)
		if out == sql {
			continue
		}
		acc.Rule("data-type: %s", m.Name)
		if m.Note != "" {
			acc.Warn(core.Warning{
				Kind:     m.WarningKind(),
				Severity: core.SeverityWarning,
				Message:  m.Note,
			})
		}
		sql = out
	}
	return sql
}
