package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reWindowGate = regexp.MustCompile(`(?i)\b(LISTAGG|GROUP_CONCAT|STRING_AGG|KEEP\s*\(|IGNORE\s+NULLS|RESPECT\s+NULLS)\b`)

	reListagg = regexp.MustCompile(`(?is)\bLISTAGG\s*\(([^()]*?)(?:,\s*('[^']*'))?\s*\)\s*WITHIN\s+GROUP\s*\(\s*ORDER\s+BY\s+([^()]+?)\s*\)`)

	reKeepClause   = regexp.MustCompile(`(?i)\bKEEP\s*\(\s*DENSE_RANK\s+(FIRST|LAST)\b`)
	reIgnoreNulls  = regexp.MustCompile(`(?i)\s+IGNORE\s+NULLS\b`)
	reRespectNulls = regexp.MustCompile(`(?i)\s+RESPECT\s+NULLS\b`)

	reGCOrderBy   = regexp.MustCompile(`(?is)\s+ORDER\s+BY\s+(.+?)(\s+SEPARATOR\s+|$)`)
	reGCSeparator = regexp.MustCompile(`(?is)\s+SEPARATOR\s+('[^']*')\s*$`)
	reSAOrderBy   = regexp.MustCompile(`(?is)^(.*?)\s+ORDER\s+BY\s+(.+)$`)
)

// windowConverter maps ordered string aggregation between its three
// spellings and degrades Oracle-only window modifiers that the targets
// cannot express.
var windowConverter = Converter{
	Name:   "window-extensions",
	Family: FamilySyntax,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reWindowGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		switch src {
		case dialect.Oracle:
			if tgt != dialect.Oracle {
				sql = listaggFromOracle(sql, tgt, acc)
				sql = degradeOracleModifiers(sql, acc)
			}
		case dialect.MySQL:
			if tgt != dialect.MySQL {
				sql = groupConcatFrom(sql, tgt, acc)
			}
		case dialect.Postgres:
			if tgt != dialect.Postgres {
				sql = stringAggFrom(sql, tgt, acc)
			}
		}
		return sql
	},
}

func listaggFromOracle(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	out := pattern.ReplaceAllFuncOutside(sql, reListagg, func(match string) string {
		m := reListagg.FindStringSubmatch(match)
		expr, sep, order := strings.TrimSpace(m[1]), m[2], strings.TrimSpace(m[3])
		if sep == "" {
			sep = "''"
		}
		if tgt == dialect.MySQL {
			acc.Rule("window: LISTAGG -> GROUP_CONCAT")
			return "GROUP_CONCAT(" + expr + " ORDER BY " + order + " SEPARATOR " + sep + ")"
		}
		acc.Rule("window: LISTAGG -> STRING_AGG")
		return "STRING_AGG(" + expr + ", " + sep + " ORDER BY " + order + ")"
	})
	if out == sql && pattern.MatchesOutside(sql, regexp.MustCompile(`(?i)\bLISTAGG\s*\(`)) {
		acc.Warnf(core.WarnManualReview, core.SeverityWarning,
			"LISTAGG call was too complex to rewrite; translate it to the target's string aggregate by hand")
	}
	return out
}

func degradeOracleModifiers(sql string, acc *core.Accumulator) string {
	if pattern.MatchesOutside(sql, reKeepClause) {
		acc.Warn(core.Warning{
			Kind:       core.WarnPartialSupport,
			Severity:   core.SeverityError,
			Message:    "KEEP (DENSE_RANK FIRST/LAST) has no equivalent aggregate form",
			Suggestion: "rewrite with FIRST_VALUE/LAST_VALUE window functions over the same ordering",
		})
	}
	out := pattern.ReplaceAllOutside(sql, reIgnoreNulls, "")
	if out != sql {
		acc.Rule("window: IGNORE NULLS removed")
		acc.Warnf(core.WarnPartialSupport, core.SeverityWarning,
			"IGNORE NULLS was removed; the function now sees NULL rows, which can change its result")
		sql = out
	}
	return rewriteRule(sql, reRespectNulls, "", "window: RESPECT NULLS removed", acc)
}

func groupConcatFrom(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	return pattern.RewriteCalls(sql, "GROUP_CONCAT", func(c pattern.Call) *string {
		inner := strings.Join(c.Args, ", ")
		sep := "','" // GROUP_CONCAT's default separator
		if m := reGCSeparator.FindStringSubmatch(inner); m != nil {
			sep = m[1]
			inner = inner[:len(inner)-len(m[0])]
		}
		order := ""
		if m := reGCOrderBy.FindStringSubmatch(inner); m != nil {
			order = strings.TrimSpace(m[1])
			inner = strings.TrimSpace(reGCOrderBy.ReplaceAllString(inner, " "))
		}
		expr := strings.TrimSpace(inner)
		var s string
		if tgt == dialect.Oracle {
			s = "LISTAGG(" + expr + ", " + sep + ")"
			if order == "" {
				// LISTAGG requires the clause; an arbitrary stable order is
				// the closest match to GROUP_CONCAT without one.
				order = "1"
			}
			s += " WITHIN GROUP (ORDER BY " + order + ")"
			acc.Rule("window: GROUP_CONCAT -> LISTAGG")
		} else {
			s = "STRING_AGG(" + expr + ", " + sep
			if order != "" {
				s += " ORDER BY " + order
			}
			s += ")"
			acc.Rule("window: GROUP_CONCAT -> STRING_AGG")
		}
		return &s
	})
}

func stringAggFrom(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	return pattern.RewriteCalls(sql, "STRING_AGG", func(c pattern.Call) *string {
		if len(c.Args) != 2 {
			return nil
		}
		expr := c.Args[0]
		sep, order := c.Args[1], ""
		if m := reSAOrderBy.FindStringSubmatch(sep); m != nil {
			sep, order = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
		var s string
		if tgt == dialect.Oracle {
			if order == "" {
				order = "1"
			}
			s = "LISTAGG(" + expr + ", " + sep + ") WITHIN GROUP (ORDER BY " + order + ")"
			acc.Rule("window: STRING_AGG -> LISTAGG")
		} else {
			s = "GROUP_CONCAT(" + expr
			if order != "" {
				s += " ORDER BY " + order
			}
			s += " SEPARATOR " + sep + ")"
			acc.Rule("window: STRING_AGG -> GROUP_CONCAT")
		}
		return &s
	})
}
