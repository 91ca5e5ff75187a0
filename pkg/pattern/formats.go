package pattern

import (
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
)

// Date-format specifier translation. Oracle and PostgreSQL share the same
// TO_CHAR token vocabulary, so only conversions to or from MySQL's
// percent-style tokens rewrite anything.

// oracleToMySQLTokens is ordered longest-first so greedy scanning never
// splits a token (HH24 must win over HH).
var oracleToMySQLTokens = []struct{ from, to string }{
	{"MONTH", "%M"},
	{"MON", "%b"},
	{"YYYY", "%Y"},
	{"HH24", "%H"},
	{"HH12", "%h"},
	{"DAY", "%W"},
	{"FF6", "%f"},
	{"FF", "%f"},
	{"YY", "%y"},
	{"MM", "%m"},
	{"DD", "%d"},
	{"DY", "%a"},
	{"HH", "%h"},
	{"MI", "%i"},
	{"SS", "%s"},
	{"AM", "%p"},
	{"PM", "%p"},
}

var mysqlToOracleTokens = map[byte]string{
	'Y': "YYYY",
	'y': "YY",
	'M': "MONTH",
	'b': "MON",
	'm': "MM",
	'd': "DD",
	'a': "DY",
	'W': "DAY",
	'H': "HH24",
	'h': "HH12",
	'i': "MI",
	's': "SS",
	'f': "FF",
	'p': "AM",
	'e': "DD",
	'T': "HH24:MI:SS",
}

// ConvertDateFormat rewrites the vendor format tokens inside a format
// string (without its surrounding quotes) from src's vocabulary to tgt's.
// Tokens with no mapping pass through unchanged.
func ConvertDateFormat(format string, src, tgt dialect.Dialect) string {
	srcMySQL := src == dialect.MySQL
	tgtMySQL := tgt == dialect.MySQL
	switch {
	case srcMySQL && !tgtMySQL:
		return mysqlFormatToOracle(format)
	case !srcMySQL && tgtMySQL:
		return oracleFormatToMySQL(format)
	default:
		return format
	}
}

func oracleFormatToMySQL(format string) string {
	var b strings.Builder
	i := 0
	for i < len(format) {
		matched := false
		for _, tok := range oracleToMySQLTokens {
			if hasTokenAt(format, i, tok.from) {
				b.WriteString(tok.to)
				i += len(tok.from)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

func hasTokenAt(s string, i int, token string) bool {
	if i+len(token) > len(s) {
		return false
	}
	return strings.EqualFold(s[i:i+len(token)], token)
}

func mysqlFormatToOracle(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			if repl, ok := mysqlToOracleTokens[format[i+1]]; ok {
				b.WriteString(repl)
				i++
				continue
			}
			// Unknown specifier: drop the percent, keep the character.
			b.WriteByte(format[i+1])
			i++
			continue
		}
		b.WriteByte(format[i])
	}
	return b.String()
}
