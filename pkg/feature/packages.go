package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	rePackageGate  = regexp.MustCompile(`(?i)\bDBMS_\w+\s*\.`)
	reDbmsOutput   = regexp.MustCompile(`(?im)^(\s*)(?:CALL\s+|EXEC(?:UTE)?\s+)?DBMS_OUTPUT\.PUT_LINE\s*\([^;]*\)\s*;?`)
	reDbmsResidual = regexp.MustCompile(`(?i)\bDBMS_(\w+)\s*\.\s*(\w+)`)
)

// packageCallConverter rewrites calls into Oracle's built-in DBMS_* packages.
// Calls with a direct scalar equivalent are mapped; diagnostics output is
// commented out; anything else is left in place with a warning naming the
// package so the statement still reads as intended.
var packageCallConverter = Converter{
	Name:   "package-calls",
	Family: FamilySyntax,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, rePackageGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		if src != dialect.Oracle || tgt == dialect.Oracle {
			return sql
		}
		randFn := "RANDOM()"
		lenFn := "OCTET_LENGTH"
		if tgt == dialect.MySQL {
			randFn = "RAND()"
			lenFn = "LENGTH"
		}

		out := pattern.RewriteCalls(sql, "DBMS_RANDOM.VALUE", func(c pattern.Call) *string {
			if len(c.Args) == 2 {
				// DBMS_RANDOM.VALUE(low, high) is uniform in [low, high).
				s := "(" + c.Args[0] + " + " + randFn + " * (" + c.Args[1] + " - " + c.Args[0] + "))"
				return &s
			}
			s := randFn
			return &s
		})
		out = pattern.ReplaceAllOutside(out, regexp.MustCompile(`(?i)\bDBMS_RANDOM\.VALUE\b`), randFn)
		if out != sql {
			acc.Rule("package-call: DBMS_RANDOM.VALUE -> %s", randFn)
			sql = out
		}

		out = pattern.RewriteCalls(sql, "DBMS_LOB.GETLENGTH", func(c pattern.Call) *string {
			if len(c.Args) != 1 {
				return nil
			}
			s := lenFn + "(" + c.Args[0] + ")"
			return &s
		})
		if out != sql {
			acc.Rule("package-call: DBMS_LOB.GETLENGTH -> %s", lenFn)
			sql = out
		}

		out = pattern.RewriteCalls(sql, "DBMS_LOB.SUBSTR", func(c pattern.Call) *string {
			if len(c.Args) != 3 {
				return nil
			}
			// Oracle argument order is (lob, amount, offset); SUBSTRING
			// takes (value, from, for).
			s := "SUBSTRING(" + c.Args[0] + ", " + c.Args[2] + ", " + c.Args[1] + ")"
			return &s
		})
		if out != sql {
			acc.Rule("package-call: DBMS_LOB.SUBSTR -> SUBSTRING")
			sql = out
		}

		out = pattern.ReplaceAllFuncOutside(sql, reDbmsOutput, func(match string) string {
			acc.Rule("package-call: DBMS_OUTPUT.PUT_LINE commented out")
			acc.Warnf(core.WarnUnsupportedFunction, core.SeverityWarning,
				"DBMS_OUTPUT.PUT_LINE has no equivalent; the call was commented out")
			m := reDbmsOutput.FindStringSubmatch(match)
			return m[1] + "-- " + strings.TrimSpace(match)
		})
		sql = out

		for _, loc := range pattern.FindAllIndexOutside(sql, reDbmsResidual) {
			ref := sql[loc[0]:loc[1]]
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"call to Oracle package routine %s has no automatic mapping; port the routine manually", ref)
		}
		return sql
	},
}
