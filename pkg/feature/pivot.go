package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	rePivotGate = regexp.MustCompile(`(?i)\b(PIVOT|UNPIVOT)\s*\(`)

	// rePivotClause captures `tbl PIVOT ( AGG(val) FOR key IN ( items ) )`
	// with a plain table or view as the source. Subquery sources are
	// reported rather than expanded.
	rePivotClause = regexp.MustCompile(`(?is)\b([\w.$#]+)\s+PIVOT\s*\(\s*(\w+)\s*\(\s*([\w.$#]+)\s*\)\s+FOR\s+([\w.$#]+)\s+IN\s*\(([^)]+)\)\s*\)`)

	reUnpivotClause = regexp.MustCompile(`(?is)\b([\w.$#]+)\s+UNPIVOT\s*\(\s*(\w+)\s+FOR\s+(\w+)\s+IN\s*\(([^)]+)\)\s*\)`)

	rePivotItem = regexp.MustCompile(`(?is)^(.+?)(?:\s+AS\s+("?\w+"?))?$`)
)

// pivotConverter expands Oracle PIVOT into conditional aggregation and
// UNPIVOT into a UNION ALL of per-column selects. The expansion covers the
// table-source form; grouping columns beyond the pivot pair cannot be
// inferred from text alone, so every expansion carries a review warning.
var pivotConverter = Converter{
	Name:   "pivot-unpivot",
	Family: FamilySyntax,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, rePivotGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		if src != dialect.Oracle || tgt == dialect.Oracle {
			return sql
		}
		sql = pattern.ReplaceAllFuncOutside(sql, rePivotClause, func(match string) string {
			m := rePivotClause.FindStringSubmatch(match)
			table, agg, val, key := m[1], m[2], m[3], m[4]
			var cols []string
			for _, item := range pattern.SplitArgs(m[5]) {
				expr, alias := splitPivotItem(item)
				if alias == "" {
					alias = pivotAlias(expr)
				}
				cols = append(cols, agg+"(CASE WHEN "+key+" = "+expr+" THEN "+val+" END) AS "+alias)
			}
			acc.Rule("pivot: PIVOT on %s expanded to conditional aggregation", table)
			acc.Warnf(core.WarnManualReview, core.SeverityWarning,
				"PIVOT was expanded to conditional aggregates over %s; add any grouping columns to the SELECT list and a GROUP BY", table)
			return "(SELECT " + strings.Join(cols, ", ") + " FROM " + table + ") pvt"
		})
		sql = pattern.ReplaceAllFuncOutside(sql, reUnpivotClause, func(match string) string {
			m := reUnpivotClause.FindStringSubmatch(match)
			table, val, key := m[1], m[2], m[3]
			var branches []string
			for _, item := range pattern.SplitArgs(m[4]) {
				col, label := splitPivotItem(item)
				if label == "" {
					label = "'" + strings.ToUpper(col) + "'"
				}
				branches = append(branches, "SELECT "+label+" AS "+key+", "+col+" AS "+val+" FROM "+table)
			}
			acc.Rule("pivot: UNPIVOT on %s expanded to UNION ALL", table)
			acc.Warnf(core.WarnPartialSupport, core.SeverityWarning,
				"UNPIVOT was expanded to a UNION ALL that scans %s once per column; NULL rows are kept, unlike UNPIVOT's default", table)
			return "(" + strings.Join(branches, " UNION ALL ") + ") unpvt"
		})
		if pattern.MatchesOutside(sql, rePivotGate) {
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"PIVOT/UNPIVOT over a subquery source cannot be expanded automatically; materialize the source first")
		}
		return sql
	},
}

func splitPivotItem(item string) (expr, alias string) {
	m := rePivotItem.FindStringSubmatch(strings.TrimSpace(item))
	if m == nil {
		return strings.TrimSpace(item), ""
	}
	return strings.TrimSpace(m[1]), m[2]
}

// pivotAlias derives a column alias from a pivot item value, the way Oracle
// names implicit pivot columns.
func pivotAlias(expr string) string {
	a := strings.Trim(expr, "'\" ")
	a = regexp.MustCompile(`\W+`).ReplaceAllString(a, "_")
	if a == "" {
		a = "value"
	}
	return strings.ToUpper(a)
}
