package feature

import (
	"regexp"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reSequenceGate  = regexp.MustCompile(`(?i)\b(SEQUENCE|NEXTVAL|CURRVAL|SERIAL|AUTO_INCREMENT|LAST_INSERT_ID)\b`)
	reOraNextval    = regexp.MustCompile(`(?i)\b([A-Za-z_][\w$#]*)\.NEXTVAL\b`)
	reOraCurrval    = regexp.MustCompile(`(?i)\b([A-Za-z_][\w$#]*)\.CURRVAL\b`)
	rePgNextval     = regexp.MustCompile(`(?i)\bNEXTVAL\s*\(\s*'([^']+)'\s*\)`)
	rePgCurrval     = regexp.MustCompile(`(?i)\bCURRVAL\s*\(\s*'([^']+)'\s*\)`)
	reCreateSeq     = regexp.MustCompile(`(?im)^\s*CREATE\s+SEQUENCE\b[^;]*;?`)
	reSeqNoKeywords = regexp.MustCompile(`(?i)\s*\b(NOCACHE|NOORDER|ORDER)\b`)
	reSeqNoPair     = regexp.MustCompile(`(?i)\bNO(CYCLE|MAXVALUE|MINVALUE)\b`)
	reBigSerial     = regexp.MustCompile(`(?i)\bBIGSERIAL\b`)
	reSerial        = regexp.MustCompile(`(?i)\bSERIAL\b`)
	reAutoIncrement = regexp.MustCompile(`(?i)\bAUTO_INCREMENT\b`)
)

// sequenceConverter maps sequence usage and auto-increment columns between
// dialects. Oracle and PostgreSQL sequences translate into each other;
// MySQL has only AUTO_INCREMENT, so sequence objects headed there become
// manual-migration stubs.
var sequenceConverter = Converter{
	Name:   "sequences",
	Family: FamilyDDL,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reSequenceGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		switch {
		case src == dialect.Oracle && tgt == dialect.Postgres:
			sql = rewriteRule(sql, reOraNextval, "NEXTVAL('$1')", "sequence: x.NEXTVAL -> NEXTVAL('x')", acc)
			sql = rewriteRule(sql, reOraCurrval, "CURRVAL('$1')", "sequence: x.CURRVAL -> CURRVAL('x')", acc)
			sql = pattern.ReplaceAllFuncOutside(sql, reCreateSeq, func(match string) string {
				// ORDER/NOORDER/NOCACHE are Oracle-only options, stripped
				// inside the statement so ORDER BY elsewhere is untouched.
				out := reSeqNoPair.ReplaceAllString(match, "NO $1")
				out = reSeqNoKeywords.ReplaceAllString(out, "")
				if out != match {
					acc.Rule("sequence: Oracle-only sequence options removed")
				}
				return out
			})
		case src == dialect.Postgres && tgt == dialect.Oracle:
			sql = rewriteRule(sql, rePgNextval, "$1.NEXTVAL", "sequence: NEXTVAL('x') -> x.NEXTVAL", acc)
			sql = rewriteRule(sql, rePgCurrval, "$1.CURRVAL", "sequence: CURRVAL('x') -> x.CURRVAL", acc)
			sql = rewriteRule(sql, reBigSerial, "NUMBER(19) GENERATED BY DEFAULT AS IDENTITY", "sequence: BIGSERIAL -> identity column", acc)
			sql = rewriteRule(sql, reSerial, "NUMBER(10) GENERATED BY DEFAULT AS IDENTITY", "sequence: SERIAL -> identity column", acc)
		case src == dialect.Postgres && tgt == dialect.MySQL:
			sql = rewriteRule(sql, reBigSerial, "BIGINT AUTO_INCREMENT", "sequence: BIGSERIAL -> BIGINT AUTO_INCREMENT", acc)
			sql = rewriteRule(sql, reSerial, "INT AUTO_INCREMENT", "sequence: SERIAL -> INT AUTO_INCREMENT", acc)
			warnSequenceRefs(sql, rePgNextval, acc)
		case src == dialect.MySQL && tgt == dialect.Postgres:
			sql = rewriteRule(sql, reAutoIncrement, "GENERATED BY DEFAULT AS IDENTITY", "sequence: AUTO_INCREMENT -> identity column", acc)
			sql = pattern.RewriteCalls(sql, "LAST_INSERT_ID", func(c pattern.Call) *string {
				if len(c.Args) != 0 {
					return nil
				}
				s := "LASTVAL()"
				acc.Rule("sequence: LAST_INSERT_ID() -> LASTVAL()")
				return &s
			})
		case src == dialect.MySQL && tgt == dialect.Oracle:
			sql = rewriteRule(sql, reAutoIncrement, "GENERATED BY DEFAULT AS IDENTITY", "sequence: AUTO_INCREMENT -> identity column", acc)
			if len(pattern.FindCalls(sql, "LAST_INSERT_ID")) > 0 {
				acc.Warnf(core.WarnPartialSupport, core.SeverityWarning,
					"LAST_INSERT_ID() has no direct equivalent; read the identity column's sequence with CURRVAL")
			}
		case src == dialect.Oracle && tgt == dialect.MySQL:
			sql = pattern.ReplaceAllFuncOutside(sql, reCreateSeq, func(match string) string {
				acc.Rule("sequence: CREATE SEQUENCE stubbed")
				return "-- MANUAL MIGRATION REQUIRED: " + match
			})
			if pattern.MatchesOutside(sql, reOraNextval) {
				acc.Warn(core.Warning{
					Kind:       core.WarnUnsupportedFunction,
					Severity:   core.SeverityError,
					Message:    "sequence NEXTVAL reference cannot be translated",
					Suggestion: "use an AUTO_INCREMENT column or maintain a counter table",
				})
			}
		}
		return sql
	},
}

// rewriteRule applies a single regex rewrite outside literals, logging the
// rule only when the text changed.
func rewriteRule(sql string, re *regexp.Regexp, repl, rule string, acc *core.Accumulator) string {
	out := pattern.ReplaceAllOutside(sql, re, repl)
	if out != sql {
		acc.Rule("%s", rule)
	}
	return out
}

func warnSequenceRefs(sql string, re *regexp.Regexp, acc *core.Accumulator) {
	if pattern.MatchesOutside(sql, re) {
		acc.Warn(core.Warning{
			Kind:       core.WarnUnsupportedFunction,
			Severity:   core.SeverityError,
			Message:    "sequence function call cannot be translated",
			Suggestion: "use an AUTO_INCREMENT column or maintain a counter table",
		})
	}
}
