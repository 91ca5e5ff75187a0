package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reCTEGate      = regexp.MustCompile(`(?i)\bWITH\s+(RECURSIVE\s+)?\w+\s*(\([^)]*\))?\s+AS\s*\(`)
	reWithRecKw    = regexp.MustCompile(`(?i)\bWITH\s+RECURSIVE\b`)
	reWithClause   = regexp.MustCompile(`(?i)\bWITH\s+(\w+)\s*(\([^)]*\))?\s+AS\s*\(`)
	reWithRecNoCol = regexp.MustCompile(`(?i)\bWITH\s+RECURSIVE\s+\w+\s+AS\s*\(`)
)

// recursiveCTEConverter reconciles the RECURSIVE keyword. Oracle's
// recursive WITH omits it and requires a column list; MySQL and PostgreSQL
// require it. Whether a CTE is recursive is decided by whether its body
// references its own name.
var recursiveCTEConverter = Converter{
	Name:   "recursive-cte",
	Family: FamilySyntax,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reCTEGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		switch {
		case tgt == dialect.Oracle && src != dialect.Oracle:
			if pattern.MatchesOutside(sql, reWithRecNoCol) {
				acc.Warnf(core.WarnSyntaxDifference, core.SeverityWarning,
					"recursive WITH requires an explicit column list on the CTE; add one")
			}
			sql = rewriteRule(sql, reWithRecKw, "WITH", "cte: RECURSIVE keyword removed", acc)
		case src == dialect.Oracle && tgt != dialect.Oracle:
			if pattern.MatchesOutside(sql, reWithRecKw) {
				return sql
			}
			if hasSelfReferencingCTE(sql) {
				out := pattern.ReplaceAllFuncOutside(sql, reWithClause, func(match string) string {
					return "WITH RECURSIVE " + strings.TrimSpace(match[len("WITH"):])
				})
				if out != sql {
					acc.Rule("cte: RECURSIVE keyword added")
					sql = out
				}
			}
		}
		return sql
	},
}

// hasSelfReferencingCTE reports whether any CTE body references its own
// name, the textual signature of recursion. References from the outer query
// do not count.
func hasSelfReferencingCTE(sql string) bool {
	masked := pattern.Mask(sql)
	for _, loc := range reWithClause.FindAllStringSubmatchIndex(masked, -1) {
		name := sql[loc[2]:loc[3]]
		open := loc[1] - 1 // the AS ( opening parenthesis
		end, ok := closeParen(masked, open)
		if !ok {
			continue
		}
		refs := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if refs.MatchString(masked[loc[1]:end]) {
			return true
		}
	}
	return false
}

func closeParen(masked string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(masked); i++ {
		switch masked[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
