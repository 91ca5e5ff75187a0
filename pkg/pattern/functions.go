package pattern

import (
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
)

// Transform is the closed set of parameter transforms a function mapping
// can request.
type Transform int

const (
	// TransformRename replaces the function name and keeps the arguments.
	TransformRename Transform = iota
	// TransformSwapArgs renames and swaps the first two arguments.
	TransformSwapArgs
	// TransformCaseWhen restructures a conditional function into CASE WHEN.
	TransformCaseWhen
	// TransformDateFormat renames and remaps the format-string argument's
	// vendor tokens.
	TransformDateFormat
	// TransformTemplate substitutes arguments into a replacement template
	// (%1, %2, ... refer to positional arguments).
	TransformTemplate
)

// FunctionMapping is one table-driven function translation rule.
type FunctionMapping struct {
	Name      string    // source function name, upper case
	Target    string    // target name, or template for TransformTemplate
	Transform Transform
	Bare      bool             // matched without parentheses (SYSDATE, USER)
	Note      string           // optional warning emitted when the rule fires
	NoteKind  core.WarningKind // kind for Note; zero value means syntax-difference
}

// WarningKind returns the kind to use for the mapping's note.
func (m FunctionMapping) WarningKind() core.WarningKind {
	if m.NoteKind != "" {
		return m.NoteKind
	}
	return core.WarnSyntaxDifference
}

var functionTables = map[dialect.Pair][]FunctionMapping{}
var functionIndex = map[dialect.Pair]map[string]FunctionMapping{}

func registerFunctions(src, tgt dialect.Dialect, mappings []FunctionMapping) {
	pair := dialect.Pair{Source: src, Target: tgt}
	functionTables[pair] = mappings
	idx := make(map[string]FunctionMapping, len(mappings))
	for _, m := range mappings {
		idx[strings.ToUpper(m.Name)] = m
	}
	functionIndex[pair] = idx
}

// FunctionsFor returns the ordered mapping table for a dialect pair.
// The returned slice is shared and must not be modified.
func FunctionsFor(src, tgt dialect.Dialect) []FunctionMapping {
	return functionTables[dialect.Pair{Source: src, Target: tgt}]
}

// LookupFunction finds the mapping for a function name, case-insensitively.
func LookupFunction(src, tgt dialect.Dialect, name string) (FunctionMapping, bool) {
	m, ok := functionIndex[dialect.Pair{Source: src, Target: tgt}][strings.ToUpper(name)]
	return m, ok
}

func init() {
	registerFunctions(dialect.Oracle, dialect.MySQL, oracleToMySQLFunctions)
	registerFunctions(dialect.Oracle, dialect.Postgres, oracleToPostgresFunctions)
	registerFunctions(dialect.MySQL, dialect.Oracle, mysqlToOracleFunctions)
	registerFunctions(dialect.MySQL, dialect.Postgres, mysqlToPostgresFunctions)
	registerFunctions(dialect.Postgres, dialect.Oracle, postgresToOracleFunctions)
	registerFunctions(dialect.Postgres, dialect.MySQL, postgresToMySQLFunctions)
}

// Oracle -> MySQL. Order matters: longer, more specific names first so that
// provenance logs read deterministically.
var oracleToMySQLFunctions = []FunctionMapping{
	{Name: "NVL", Target: "IFNULL", Transform: TransformRename},
	{Name: "NVL2", Target: "CASE WHEN %1 IS NOT NULL THEN %2 ELSE %3 END", Transform: TransformTemplate},
	{Name: "DECODE", Target: "CASE", Transform: TransformCaseWhen},
	{Name: "INSTR", Target: "LOCATE", Transform: TransformSwapArgs},
	{Name: "TO_DATE", Target: "STR_TO_DATE", Transform: TransformDateFormat},
	{Name: "TO_CHAR", Target: "DATE_FORMAT", Transform: TransformDateFormat,
		Note: "TO_CHAR was mapped to DATE_FORMAT; verify non-date usages"},
	{Name: "TO_NUMBER", Target: "CAST(%1 AS DECIMAL(38,10))", Transform: TransformTemplate,
		Note: "TO_NUMBER has no direct MySQL equivalent; CAST precision may differ", NoteKind: core.WarnDataTypeMismatch},
	{Name: "ADD_MONTHS", Target: "DATE_ADD(%1, INTERVAL %2 MONTH)", Transform: TransformTemplate},
	{Name: "MONTHS_BETWEEN", Target: "TIMESTAMPDIFF(MONTH, %2, %1)", Transform: TransformTemplate,
		Note: "MONTHS_BETWEEN returns fractional months on Oracle; TIMESTAMPDIFF truncates", NoteKind: core.WarnPartialSupport},
	{Name: "TRUNC", Target: "DATE(%1)", Transform: TransformTemplate,
		Note: "TRUNC was assumed to be date truncation; numeric TRUNC needs TRUNCATE()"},
	{Name: "LAST_DAY", Target: "LAST_DAY", Transform: TransformRename},
	{Name: "SYSDATE", Target: "NOW()", Transform: TransformRename, Bare: true},
	{Name: "SYSTIMESTAMP", Target: "NOW(6)", Transform: TransformRename, Bare: true},
	{Name: "LENGTHB", Target: "LENGTH", Transform: TransformRename,
		Note: "LENGTHB byte semantics depend on the target column character set"},
	{Name: "REGEXP_LIKE", Target: "%1 REGEXP %2", Transform: TransformTemplate},
}

// Oracle -> PostgreSQL. TO_CHAR/TO_DATE share Oracle's format tokens, so
// they pass through unmapped.
var oracleToPostgresFunctions = []FunctionMapping{
	{Name: "NVL", Target: "COALESCE", Transform: TransformRename},
	{Name: "NVL2", Target: "CASE WHEN %1 IS NOT NULL THEN %2 ELSE %3 END", Transform: TransformTemplate},
	{Name: "DECODE", Target: "CASE", Transform: TransformCaseWhen},
	{Name: "INSTR", Target: "STRPOS", Transform: TransformRename,
		Note: "INSTR with position or occurrence arguments has no STRPOS equivalent", NoteKind: core.WarnPartialSupport},
	{Name: "ADD_MONTHS", Target: "(%1 + MAKE_INTERVAL(months => %2))", Transform: TransformTemplate},
	{Name: "MONTHS_BETWEEN", Target: "EXTRACT(EPOCH FROM AGE(%1, %2)) / 2592000.0", Transform: TransformTemplate,
		Note: "MONTHS_BETWEEN was approximated via AGE(); fractional parts differ", NoteKind: core.WarnPartialSupport},
	{Name: "TRUNC", Target: "DATE_TRUNC('day', %1)", Transform: TransformTemplate,
		Note: "TRUNC was assumed to be date truncation; numeric TRUNC needs TRUNC(numeric)"},
	{Name: "SYSDATE", Target: "CURRENT_TIMESTAMP", Transform: TransformRename, Bare: true},
	{Name: "SYSTIMESTAMP", Target: "CURRENT_TIMESTAMP", Transform: TransformRename, Bare: true},
	{Name: "LENGTHB", Target: "OCTET_LENGTH", Transform: TransformRename},
	{Name: "REGEXP_LIKE", Target: "%1 ~ %2", Transform: TransformTemplate},
	{Name: "TO_NUMBER", Target: "CAST(%1 AS NUMERIC)", Transform: TransformTemplate,
		Note: "TO_NUMBER format models are not carried over", NoteKind: core.WarnPartialSupport},
}

// MySQL -> Oracle.
var mysqlToOracleFunctions = []FunctionMapping{
	{Name: "IFNULL", Target: "NVL", Transform: TransformRename},
	{Name: "IF", Target: "CASE", Transform: TransformCaseWhen},
	{Name: "LOCATE", Target: "INSTR", Transform: TransformSwapArgs},
	{Name: "DATE_FORMAT", Target: "TO_CHAR", Transform: TransformDateFormat},
	{Name: "STR_TO_DATE", Target: "TO_DATE", Transform: TransformDateFormat},
	{Name: "NOW", Target: "SYSDATE", Transform: TransformTemplate},
	{Name: "CURDATE", Target: "TRUNC(SYSDATE)", Transform: TransformTemplate},
	{Name: "CURTIME", Target: "TO_CHAR(SYSDATE, 'HH24:MI:SS')", Transform: TransformTemplate},
	{Name: "CHAR_LENGTH", Target: "LENGTH", Transform: TransformRename},
	{Name: "RAND", Target: "DBMS_RANDOM.VALUE", Transform: TransformTemplate},
	{Name: "TRUNCATE", Target: "TRUNC", Transform: TransformRename},
	{Name: "DATEDIFF", Target: "(TRUNC(%1) - TRUNC(%2))", Transform: TransformTemplate},
	{Name: "UNIX_TIMESTAMP", Target: "((SYSDATE - DATE '1970-01-01') * 86400)", Transform: TransformTemplate,
		Note: "UNIX_TIMESTAMP approximation ignores time zones", NoteKind: core.WarnPartialSupport},
	{Name: "UUID", Target: "SYS_GUID()", Transform: TransformTemplate,
		Note: "SYS_GUID returns RAW(16), not the textual UUID form", NoteKind: core.WarnDataTypeMismatch},
}

// MySQL -> PostgreSQL.
var mysqlToPostgresFunctions = []FunctionMapping{
	{Name: "IFNULL", Target: "COALESCE", Transform: TransformRename},
	{Name: "IF", Target: "CASE", Transform: TransformCaseWhen},
	{Name: "LOCATE", Target: "STRPOS", Transform: TransformSwapArgs},
	{Name: "DATE_FORMAT", Target: "TO_CHAR", Transform: TransformDateFormat},
	{Name: "STR_TO_DATE", Target: "TO_TIMESTAMP", Transform: TransformDateFormat},
	{Name: "CURDATE", Target: "CURRENT_DATE", Transform: TransformTemplate},
	{Name: "CURTIME", Target: "CURRENT_TIME", Transform: TransformTemplate},
	{Name: "RAND", Target: "RANDOM", Transform: TransformRename},
	{Name: "TRUNCATE", Target: "TRUNC", Transform: TransformRename},
	{Name: "DATEDIFF", Target: "(%1::date - %2::date)", Transform: TransformTemplate},
	{Name: "UNIX_TIMESTAMP", Target: "EXTRACT(EPOCH FROM %1)", Transform: TransformTemplate},
	{Name: "UUID", Target: "GEN_RANDOM_UUID", Transform: TransformRename},
	{Name: "CONCAT_WS", Target: "CONCAT_WS", Transform: TransformRename},
	{Name: "LAST_INSERT_ID", Target: "LASTVAL", Transform: TransformRename,
		Note: "LASTVAL requires a sequence assignment in the same session", NoteKind: core.WarnManualReview},
}

// PostgreSQL -> Oracle.
var postgresToOracleFunctions = []FunctionMapping{
	{Name: "STRPOS", Target: "INSTR", Transform: TransformRename},
	{Name: "NOW", Target: "SYSDATE", Transform: TransformTemplate},
	{Name: "RANDOM", Target: "DBMS_RANDOM.VALUE", Transform: TransformTemplate},
	{Name: "GEN_RANDOM_UUID", Target: "SYS_GUID", Transform: TransformRename},
	{Name: "DATE_TRUNC", Target: "TRUNC(%2, %1)", Transform: TransformTemplate,
		Note: "DATE_TRUNC field names differ from Oracle TRUNC format models; verify the unit", NoteKind: core.WarnManualReview},
	{Name: "AGE", Target: "MONTHS_BETWEEN(%1, %2)", Transform: TransformTemplate,
		Note: "AGE returns an interval; MONTHS_BETWEEN returns fractional months", NoteKind: core.WarnPartialSupport},
	{Name: "SPLIT_PART", Target: "REGEXP_SUBSTR(%1, '[^' || %2 || ']+', 1, %3)", Transform: TransformTemplate,
		Note: "SPLIT_PART emulation treats the delimiter as a character class", NoteKind: core.WarnPartialSupport},
	{Name: "LEFT", Target: "SUBSTR(%1, 1, %2)", Transform: TransformTemplate},
	{Name: "RIGHT", Target: "SUBSTR(%1, -%2)", Transform: TransformTemplate},
}

// PostgreSQL -> MySQL.
var postgresToMySQLFunctions = []FunctionMapping{
	{Name: "STRPOS", Target: "LOCATE", Transform: TransformSwapArgs},
	{Name: "RANDOM", Target: "RAND", Transform: TransformRename},
	{Name: "GEN_RANDOM_UUID", Target: "UUID", Transform: TransformRename},
	{Name: "TO_CHAR", Target: "DATE_FORMAT", Transform: TransformDateFormat,
		Note: "TO_CHAR was mapped to DATE_FORMAT; verify non-date usages"},
	{Name: "TO_TIMESTAMP", Target: "STR_TO_DATE", Transform: TransformDateFormat},
	{Name: "DATE_TRUNC", Target: "DATE(%2)", Transform: TransformTemplate,
		Note: "DATE_TRUNC was approximated with DATE(); sub-day units are lost", NoteKind: core.WarnPartialSupport},
	{Name: "SPLIT_PART", Target: "SUBSTRING_INDEX(SUBSTRING_INDEX(%1, %2, %3), %2, -1)", Transform: TransformTemplate},
	{Name: "EXTRACT", Target: "EXTRACT", Transform: TransformRename},
	{Name: "AGE", Target: "TIMESTAMPDIFF(SECOND, %2, %1)", Transform: TransformTemplate,
		Note: "AGE returns an interval; TIMESTAMPDIFF returns whole seconds", NoteKind: core.WarnPartialSupport},
}
