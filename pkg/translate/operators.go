package translate

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reConcatOp     = regexp.MustCompile(`\|\|`)
	reRownumLimit  = regexp.MustCompile(`(?i)\bWHERE\s+ROWNUM\s*<=?\s*(\d+)\s*(;|$)`)
	reRownumLess   = regexp.MustCompile(`(?i)\bROWNUM\b`)
	reLimitOffset  = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\s+OFFSET\s+(\d+)`)
	reLimitComma   = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\s*,\s*(\d+)`)
	reLimitOnly    = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)`)
	reDoubleColon  = regexp.MustCompile(`::`)
)

// Operators rewrites operator and clause-level syntax differences:
// concatenation, ROWNUM row limiting, LIMIT/OFFSET paging, and the
// PostgreSQL cast operator.
func Operators(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
	sql = concatOperator(sql, src, tgt, acc)
	sql = rowLimiting(sql, src, tgt, acc)
	sql = castOperator(sql, src, tgt, acc)
	return sql
}

func concatOperator(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
	switch {
	case tgt == dialect.MySQL && src != dialect.MySQL:
		if len(pattern.FindAllIndexOutside(sql, reConcatOp)) > 0 {
			acc.Warn(core.Warning{
				Kind:       core.WarnSyntaxDifference,
				Severity:   core.SeverityWarning,
				Message:    "|| concatenation is not string concatenation in default MySQL mode",
				Suggestion: "enable PIPES_AS_CONCAT or rewrite the expression with CONCAT()",
			})
		}
	case tgt == dialect.Oracle && src == dialect.MySQL:
		// Oracle CONCAT takes exactly two arguments; expand wider calls
		// into the concatenation operator.
		out := pattern.RewriteCalls(sql, "CONCAT", func(c pattern.Call) *string {
			if len(c.Args) < 3 {
				return nil
			}
			s := "(" + strings.Join(c.Args, " || ") + ")"
			return &s
		})
		if out != sql {
			acc.Rule("operator: CONCAT -> ||")
			sql = out
		}
	}
	return sql
}

func rowLimiting(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
	switch {
	case src == dialect.Oracle && tgt != dialect.Oracle:
		out := pattern.ReplaceAllOutside(sql, reRownumLimit, "LIMIT $1$2")
		if out != sql {
			acc.Rule("operator: ROWNUM -> LIMIT")
			sql = out
		}
		if len(pattern.FindAllIndexOutside(sql, reRownumLess)) > 0 {
			acc.Warn(core.Warning{
				Kind:     core.WarnManualReview,
				Severity: core.SeverityWarning,
				Message:  "ROWNUM used outside a simple row-limit predicate; rewrite with LIMIT or ROW_NUMBER()",
			})
		}
	case src != dialect.Oracle && tgt == dialect.Oracle:
		out := pattern.ReplaceAllOutside(sql, reLimitOffset, "OFFSET $2 ROWS FETCH NEXT $1 ROWS ONLY")
		out = pattern.ReplaceAllOutside(out, reLimitComma, "OFFSET $1 ROWS FETCH NEXT $2 ROWS ONLY")
		out = pattern.ReplaceAllOutside(out, reLimitOnly, "FETCH FIRST $1 ROWS ONLY")
		if out != sql {
			acc.Rule("operator: LIMIT -> FETCH")
			sql = out
		}
	case src == dialect.MySQL && tgt == dialect.Postgres:
		out := pattern.ReplaceAllOutside(sql, reLimitComma, "LIMIT $2 OFFSET $1")
		if out != sql {
			acc.Rule("operator: LIMIT offset,count -> LIMIT count OFFSET offset")
			sql = out
		}
	}
	return sql
}

// reOperandCast matches a simple operand followed by the :: cast operator.
// The operator binds to the preceding token, so operand and type must be
// captured together for a faithful CAST() rewrite.
var reOperandCast = regexp.MustCompile(`(\w+(?:\([^()]*\))?|'[^']*')\s*::\s*(\w+(?:\s+\w+)?(?:\(\s*\d+(?:\s*,\s*\d+)?\s*\))?)`)

func castOperator(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
	if src != dialect.Postgres || tgt == dialect.Postgres {
		return sql
	}
	out := pattern.ReplaceAllOutside(sql, reOperandCast, "CAST($1 AS $2)")
	if out != sql {
		acc.Rule("operator: :: -> CAST")
		sql = out
	}
	if len(pattern.FindAllIndexOutside(sql, reDoubleColon)) > 0 {
		acc.Warn(core.Warning{
			Kind:     core.WarnManualReview,
			Severity: core.SeverityWarning,
			Message:  ":: cast with a complex operand could not be rewritten automatically",
		})
	}
	return sql
}
