// Package recovery repairs SQL that the structural parser rejected. Each
// strategy targets one known failure family and carries a fixed confidence
// score. Confidence is reported to the caller and never gates a strategy:
// a low-confidence repair that makes the text parse is still a repair.
package recovery

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
	"github.com/leapstack-labs/sqlbridge/pkg/preprocess"
)

// Strategy is one repair tactic. CanHandle is a cheap textual check;
// Apply must be safe on input it cannot actually fix.
type Strategy struct {
	Name       string
	Confidence float64
	CanHandle  func(sql string) bool
	Apply      func(sql string, acc *core.Accumulator) string
}

// Attempt records one strategy application.
type Attempt struct {
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	Changed    bool    `json:"changed"`
	Parsed     bool    `json:"parsed"`
}

// Outcome is the result of a recovery run.
type Outcome struct {
	SQL        string    `json:"sql"`
	Recovered  bool      `json:"recovered"`
	Confidence float64   `json:"confidence"`
	Attempts   []Attempt `json:"attempts"`
}

// strategies is the fixed priority order, most trustworthy first.
var strategies = []Strategy{
	{
		Name:       "physical-attributes",
		Confidence: 0.9,
		CanHandle:  preprocess.HasPhysicalAttributes,
		Apply: func(sql string, acc *core.Accumulator) string {
			acc.Rule("recovery: physical storage attributes removed")
			return preprocess.StripPhysicalAttributes(sql)
		},
	},
	{
		Name:       "comment-removal",
		Confidence: 0.85,
		CanHandle:  hasComments,
		Apply: func(sql string, acc *core.Accumulator) string {
			acc.Rule("recovery: comments removed")
			return pattern.StripComments(sql)
		},
	},
	{
		Name:       "hint-removal",
		Confidence: 0.8,
		CanHandle: func(sql string) bool {
			return reHint.MatchString(pattern.MaskStrings(sql))
		},
		Apply: func(sql string, acc *core.Accumulator) string {
			acc.Rule("recovery: optimizer hints removed")
			return pattern.ReplaceAllStringsMasked(sql, reHint, "")
		},
	},
	{
		Name:       "paren-balance",
		Confidence: 0.7,
		CanHandle: func(sql string) bool {
			return pattern.CountOutside(sql, '(') != pattern.CountOutside(sql, ')')
		},
		Apply:      balanceParens,
	},
	{
		Name:       "string-escape",
		Confidence: 0.65,
		CanHandle: func(sql string) bool {
			return pattern.UnescapedQuoteCount(sql)%2 != 0
		},
		Apply: func(sql string, acc *core.Accumulator) string {
			acc.Rule("recovery: unterminated string literal closed")
			acc.Warnf(core.WarnManualReview, core.SeverityWarning,
				"an unterminated string literal was closed at the end of the statement; check the literal's intended extent")
			return strings.TrimRight(sql, " \t\n") + "'"
		},
	},
	{
		Name:       "reserved-word-quoting",
		Confidence: 0.6,
		CanHandle: func(sql string) bool {
			return reReservedIdent.MatchString(pattern.Mask(sql))
		},
		Apply: func(sql string, acc *core.Accumulator) string {
			out := pattern.ReplaceAllOutside(sql, reReservedIdent, `$1"$2"$3`)
			if out != sql {
				acc.Rule("recovery: reserved words quoted as identifiers")
			}
			return out
		},
	},
	{
		Name:       "connect-by-rewrite",
		Confidence: 0.55,
		CanHandle: func(sql string) bool {
			return pattern.MatchesOutside(sql, reConnectBy)
		},
		Apply:      connectByToRecursive,
	},
}

var (
	reHint = regexp.MustCompile(`/\*\+.*?\*/|--\+[^\n]*`)

	// reReservedIdent quotes a reserved word used where an identifier is
	// expected: after a dot, or as a bare column in a SELECT list or
	// assignment.
	reReservedIdent = regexp.MustCompile(`(?i)(\.|,\s*|SELECT\s+)(LEVEL|COMMENT|MODE|SIZE|RANK)(\s*[,=.\s]|\s*$)`)

	reConnectBy = regexp.MustCompile(`(?i)\bCONNECT\s+BY\b`)

	reConnectByShape = regexp.MustCompile(`(?is)\bSELECT\s+(.+?)\s+FROM\s+([\w.]+)\s+START\s+WITH\s+(.+?)\s+CONNECT\s+BY\s+PRIOR\s+([\w.]+)\s*=\s*([\w.]+)\s*(;|$)`)
)

// Strategies returns the fixed-priority strategy list.
func Strategies() []Strategy { return strategies }

// SingleShot applies only the highest-priority applicable strategy. check
// reports whether the repaired text now parses; it may be nil, in which
// case changing the text counts as recovery.
func SingleShot(sql string, check func(string) bool, acc *core.Accumulator) Outcome {
	return run(sql, check, acc, true)
}

// Sequential applies every applicable strategy in priority order, stopping
// as soon as check accepts the text.
func Sequential(sql string, check func(string) bool, acc *core.Accumulator) Outcome {
	return run(sql, check, acc, false)
}

func run(sql string, check func(string) bool, acc *core.Accumulator, single bool) Outcome {
	out := Outcome{SQL: sql}
	for _, s := range strategies {
		if !s.CanHandle(out.SQL) {
			continue
		}
		repaired := s.Apply(out.SQL, acc)
		att := Attempt{
			Strategy:   s.Name,
			Confidence: s.Confidence,
			Changed:    repaired != out.SQL,
		}
		out.SQL = repaired
		if check != nil {
			att.Parsed = check(repaired)
		}
		out.Attempts = append(out.Attempts, att)
		if att.Changed && out.Confidence == 0 {
			out.Confidence = s.Confidence
		}
		// Without a check, a change is the best signal we have; sequential
		// mode still works through the rest of the applicable strategies.
		if check == nil && att.Changed {
			out.Recovered = true
		}
		if att.Parsed {
			out.Recovered = true
			out.Confidence = s.Confidence
			return out
		}
		if single {
			return out
		}
	}
	return out
}

func hasComments(sql string) bool {
	return pattern.StripComments(sql) != sql
}

// balanceParens closes unclosed parentheses at the end of the text and
// drops unmatched closers. Literal content never counts toward balance.
func balanceParens(sql string, acc *core.Accumulator) string {
	open := pattern.CountOutside(sql, '(')
	closed := pattern.CountOutside(sql, ')')
	switch {
	case open > closed:
		acc.Rule("recovery: %d unclosed parenthesis(es) closed", open-closed)
		trimmed := strings.TrimRight(sql, " \t\n;")
		tail := sql[len(trimmed):]
		return trimmed + strings.Repeat(")", open-closed) + tail
	case closed > open:
		acc.Rule("recovery: %d unmatched closing parenthesis(es) removed", closed-open)
		return dropUnmatchedClosers(sql, closed-open)
	}
	return sql
}

func dropUnmatchedClosers(sql string, excess int) string {
	masked := pattern.Mask(sql)
	var b strings.Builder
	b.Grow(len(sql))
	depth := 0
	for i := 0; i < len(sql); i++ {
		switch masked[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 && excess > 0 {
				excess--
				continue
			}
			depth--
		}
		b.WriteByte(sql[i])
	}
	return b.String()
}

// connectByToRecursive rewrites the canonical single-table CONNECT BY
// hierarchy into a recursive CTE. PRIOR a = b means a child's b column
// references its parent's a column.
func connectByToRecursive(sql string, acc *core.Accumulator) string {
	out := pattern.ReplaceAllFuncOutside(sql, reConnectByShape, func(match string) string {
		m := reConnectByShape.FindStringSubmatch(match)
		cols, table, start := strings.TrimSpace(m[1]), m[2], strings.TrimSpace(m[3])
		parentCol, childCol, term := lastIdent(m[4]), lastIdent(m[5]), m[6]

		childCols := prefixColumns(cols, "c")
		if childCols == "" {
			return match
		}
		acc.Rule("recovery: CONNECT BY on %s rewritten as recursive CTE", table)
		acc.Warnf(core.WarnSyntaxDifference, core.SeverityWarning,
			"CONNECT BY hierarchy was rewritten as a recursive CTE; LEVEL and SYS_CONNECT_BY_PATH, if used, need manual replacements")
		return "WITH RECURSIVE hier AS (" +
			"SELECT " + cols + " FROM " + table + " WHERE " + start +
			" UNION ALL " +
			"SELECT " + childCols + " FROM " + table + " c JOIN hier h ON c." + childCol + " = h." + parentCol +
			") SELECT " + cols + " FROM hier" + term
	})
	return out
}

func lastIdent(ref string) string {
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// prefixColumns qualifies each bare column in a select list with an alias.
// Lists with expressions are left alone; the shape is too ambiguous to
// rewrite safely.
func prefixColumns(cols, alias string) string {
	if strings.TrimSpace(cols) == "*" {
		return alias + ".*"
	}
	parts := pattern.SplitArgs(cols)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if !regexp.MustCompile(`^\w+$`).MatchString(p) {
			return ""
		}
		out = append(out, alias+"."+p)
	}
	return strings.Join(out, ", ")
}
