package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reDateArithGate = regexp.MustCompile(`(?i)\b(SYSDATE|NOW\s*\(|CURRENT_TIMESTAMP|CURRENT_DATE|DATE_ADD|DATE_SUB|INTERVAL)\b`)

	// Oracle date arithmetic is plain numbers: days as integers, fractions
	// of a day for smaller units. Only the idiomatic fractions are mapped.
	reOraDatePlus = regexp.MustCompile(`(?i)\b(SYSDATE|NOW\(\)|CURRENT_TIMESTAMP|CURRENT_DATE)\s*([+-])\s*(\d+)\s*(?:/\s*(24|1440|86400))?(?:\s|$|[,);])`)

	reDateAddCall = regexp.MustCompile(`(?i)\b(DATE_ADD|DATE_SUB)\s*\(`)
	reIntervalArg = regexp.MustCompile(`(?is)^INTERVAL\s+(\d+)\s+(\w+)$`)
	rePgInterval  = regexp.MustCompile(`(?i)([\w()]+)\s*([+-])\s*INTERVAL\s+'(\d+)\s*(\w+?)s?'`)
)

var dayFractionUnit = map[string]string{
	"":      "DAY",
	"24":    "HOUR",
	"1440":  "MINUTE",
	"86400": "SECOND",
}

// fractionPerUnit is the inverse mapping, for targets that express
// sub-day offsets as fractions of a day.
var fractionPerUnit = map[string]string{
	"DAY":    "",
	"HOUR":   "/24",
	"MINUTE": "/1440",
	"SECOND": "/86400",
}

// dateArithmeticConverter runs last: the function mappings before it may
// have produced date expressions that still carry source-style arithmetic.
var dateArithmeticConverter = Converter{
	Name:   "date-arithmetic",
	Family: FamilySyntax,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reDateArithGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		switch {
		case src == dialect.Oracle && tgt != dialect.Oracle:
			sql = oracleArithTo(sql, tgt, acc)
		case src == dialect.MySQL && tgt != dialect.MySQL:
			sql = dateAddCallsTo(sql, tgt, acc)
		case src == dialect.Postgres && tgt != dialect.Postgres:
			sql = pgIntervalsTo(sql, tgt, acc)
		}
		return sql
	},
}

func oracleArithTo(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	out := pattern.ReplaceAllFuncOutside(sql, reOraDatePlus, func(match string) string {
		m := reOraDatePlus.FindStringSubmatch(match)
		base, sign, n, frac := m[1], m[2], m[3], m[4]
		unit, ok := dayFractionUnit[frac]
		if !ok {
			return match
		}
		tail := match[len(match)-trailingLen(match):]
		if tgt == dialect.MySQL {
			fn := "DATE_ADD"
			if sign == "-" {
				fn = "DATE_SUB"
			}
			return fn + "(" + base + ", INTERVAL " + n + " " + unit + ")" + tail
		}
		return base + " " + sign + " INTERVAL '" + n + " " + strings.ToLower(unit) + "'" + tail
	})
	if out != sql {
		acc.Rule("date-arithmetic: day offset -> INTERVAL")
		sql = out
	}
	return sql
}

// trailingLen returns the length of the boundary character the arithmetic
// pattern had to consume, so it can be put back after the rewrite.
func trailingLen(match string) int {
	if match == "" {
		return 0
	}
	switch match[len(match)-1] {
	case ' ', '\t', '\n', ',', ')', ';':
		return 1
	}
	return 0
}

func dateAddCallsTo(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	for _, name := range []string{"DATE_ADD", "DATE_SUB"} {
		sign := "+"
		if name == "DATE_SUB" {
			sign = "-"
		}
		out := pattern.RewriteCalls(sql, name, func(c pattern.Call) *string {
			if len(c.Args) != 2 {
				return nil
			}
			m := reIntervalArg.FindStringSubmatch(strings.TrimSpace(c.Args[1]))
			if m == nil {
				return nil
			}
			n, unit := m[1], strings.TrimSuffix(strings.ToUpper(m[2]), "S")
			var s string
			if tgt == dialect.Oracle {
				frac, ok := fractionPerUnit[unit]
				if !ok {
					// Months and years do not reduce to day fractions.
					if unit == "MONTH" || unit == "YEAR" {
						months := n
						if unit == "YEAR" {
							s = "ADD_MONTHS(" + c.Args[0] + ", " + sign + "12 * " + n + ")"
						} else {
							s = "ADD_MONTHS(" + c.Args[0] + ", " + sign + months + ")"
						}
						return &s
					}
					return nil
				}
				s = "(" + c.Args[0] + " " + sign + " " + n + frac + ")"
			} else {
				s = "(" + c.Args[0] + " " + sign + " INTERVAL '" + n + " " + strings.ToLower(unit) + "')"
			}
			return &s
		})
		if out != sql {
			acc.Rule("date-arithmetic: %s -> %s offset", name, tgt)
			sql = out
		}
	}
	return sql
}

func pgIntervalsTo(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	out := pattern.ReplaceAllCommentsMasked(sql, rePgInterval, func(match string) string {
		m := rePgInterval.FindStringSubmatch(match)
		base, sign, n, unit := m[1], m[2], m[3], strings.ToUpper(m[4])
		if tgt == dialect.MySQL {
			fn := "DATE_ADD"
			if sign == "-" {
				fn = "DATE_SUB"
			}
			return fn + "(" + base + ", INTERVAL " + n + " " + unit + ")"
		}
		frac, ok := fractionPerUnit[unit]
		if !ok {
			if unit == "MONTH" {
				return "ADD_MONTHS(" + base + ", " + sign + n + ")"
			}
			if unit == "YEAR" {
				return "ADD_MONTHS(" + base + ", " + sign + "12 * " + n + ")"
			}
			return match
		}
		return base + " " + sign + " " + n + frac
	})
	if out != sql {
		acc.Rule("date-arithmetic: INTERVAL -> %s offset", tgt)
		sql = out
	}
	return sql
}
