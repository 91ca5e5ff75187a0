package pattern

import (
	"regexp"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
)

// TypeMapping rewrites one data-type spelling. Precision and scale groups
// are carried into the replacement verbatim.
type TypeMapping struct {
	Name        string // rule name for provenance logs
	Pattern     *regexp.Regexp
	Replacement string
	Note        string           // optional warning emitted when the rule fires
	NoteKind    core.WarningKind // zero value means data-type-mismatch
}

// WarningKind returns the kind to use for the mapping's note.
func (m TypeMapping) WarningKind() core.WarningKind {
	if m.NoteKind != "" {
		return m.NoteKind
	}
	return core.WarnDataTypeMismatch
}

var typeTables = map[dialect.Pair][]TypeMapping{}

// TypesFor returns the ordered type mapping table for a dialect pair.
func TypesFor(src, tgt dialect.Dialect) []TypeMapping {
	return typeTables[dialect.Pair{Source: src, Target: tgt}]
}

func typeRe(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + expr)
}

func init() {
	typeTables[dialect.Pair{Source: dialect.Oracle, Target: dialect.MySQL}] = []TypeMapping{
		{Name: "varchar2-to-varchar", Pattern: typeRe(`N?VARCHAR2\s*\(\s*(\d+)(?:\s+(?:BYTE|CHAR))?\s*\)`), Replacement: "VARCHAR($1)"},
		{Name: "number-scaled-to-decimal", Pattern: typeRe(`NUMBER\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)`), Replacement: "DECIMAL($1,$2)"},
		{Name: "number-precision-to-decimal", Pattern: typeRe(`NUMBER\s*\(\s*(\d+)\s*\)`), Replacement: "DECIMAL($1)"},
		{Name: "number-to-decimal", Pattern: typeRe(`NUMBER\b`), Replacement: "DECIMAL(38,10)",
			Note: "unconstrained NUMBER mapped to DECIMAL(38,10); adjust precision if known"},
		{Name: "nclob-to-longtext", Pattern: typeRe(`NCLOB\b`), Replacement: "LONGTEXT"},
		{Name: "clob-to-longtext", Pattern: typeRe(`CLOB\b`), Replacement: "LONGTEXT"},
		{Name: "blob-to-longblob", Pattern: typeRe(`BLOB\b`), Replacement: "LONGBLOB"},
		{Name: "long-raw-to-longblob", Pattern: typeRe(`LONG\s+RAW\b`), Replacement: "LONGBLOB"},
		{Name: "raw-to-varbinary", Pattern: typeRe(`RAW\s*\(\s*(\d+)\s*\)`), Replacement: "VARBINARY($1)"},
		{Name: "binary-float", Pattern: typeRe(`BINARY_FLOAT\b`), Replacement: "FLOAT"},
		{Name: "binary-double", Pattern: typeRe(`BINARY_DOUBLE\b`), Replacement: "DOUBLE"},
		// RE2 has no lookahead, so DATE is only rewritten in column-definition
		// positions; DATE '...' literals never match.
		{Name: "oracle-date-to-datetime", Pattern: typeRe(`DATE((?:\s+NOT\s+NULL|\s+DEFAULT|\s*[,)]|(?m:\s*$)))`), Replacement: "DATETIME$1",
			Note: "Oracle DATE carries a time component; DATETIME chosen over DATE"},
	}

	typeTables[dialect.Pair{Source: dialect.Oracle, Target: dialect.Postgres}] = []TypeMapping{
		{Name: "varchar2-to-varchar", Pattern: typeRe(`N?VARCHAR2\s*\(\s*(\d+)(?:\s+(?:BYTE|CHAR))?\s*\)`), Replacement: "VARCHAR($1)"},
		{Name: "number-scaled-to-numeric", Pattern: typeRe(`NUMBER\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)`), Replacement: "NUMERIC($1,$2)"},
		{Name: "number-precision-to-numeric", Pattern: typeRe(`NUMBER\s*\(\s*(\d+)\s*\)`), Replacement: "NUMERIC($1)"},
		{Name: "number-to-numeric", Pattern: typeRe(`NUMBER\b`), Replacement: "NUMERIC"},
		{Name: "nclob-to-text", Pattern: typeRe(`NCLOB\b`), Replacement: "TEXT"},
		{Name: "clob-to-text", Pattern: typeRe(`CLOB\b`), Replacement: "TEXT"},
		{Name: "blob-to-bytea", Pattern: typeRe(`BLOB\b`), Replacement: "BYTEA"},
		{Name: "long-raw-to-bytea", Pattern: typeRe(`LONG\s+RAW\b`), Replacement: "BYTEA"},
		{Name: "raw-to-bytea", Pattern: typeRe(`RAW\s*\(\s*\d+\s*\)`), Replacement: "BYTEA"},
		{Name: "binary-float", Pattern: typeRe(`BINARY_FLOAT\b`), Replacement: "REAL"},
		{Name: "binary-double", Pattern: typeRe(`BINARY_DOUBLE\b`), Replacement: "DOUBLE PRECISION"},
		{Name: "oracle-date-to-timestamp", Pattern: typeRe(`DATE((?:\s+NOT\s+NULL|\s+DEFAULT|\s*[,)]|(?m:\s*$)))`), Replacement: "TIMESTAMP(0)$1",
			Note: "Oracle DATE carries a time component; TIMESTAMP(0) chosen over DATE"},
	}

	typeTables[dialect.Pair{Source: dialect.MySQL, Target: dialect.Oracle}] = []TypeMapping{
		{Name: "varchar-to-varchar2", Pattern: typeRe(`VARCHAR\s*\(\s*(\d+)\s*\)`), Replacement: "VARCHAR2($1)"},
		{Name: "bigint-to-number", Pattern: typeRe(`BIGINT\b`), Replacement: "NUMBER(19)"},
		{Name: "mediumint-to-number", Pattern: typeRe(`MEDIUMINT\b`), Replacement: "NUMBER(7)"},
		{Name: "smallint-to-number", Pattern: typeRe(`SMALLINT\b`), Replacement: "NUMBER(5)"},
		{Name: "tinyint-to-number", Pattern: typeRe(`TINYINT\s*\(\s*1\s*\)`), Replacement: "NUMBER(1)"},
		{Name: "tinyint-to-number", Pattern: typeRe(`TINYINT\b`), Replacement: "NUMBER(3)"},
		{Name: "int-to-number", Pattern: typeRe(`INT(?:EGER)?\b`), Replacement: "NUMBER(10)"},
		{Name: "decimal-to-number", Pattern: typeRe(`DECIMAL\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)`), Replacement: "NUMBER($1,$2)"},
		{Name: "double-to-binary-double", Pattern: typeRe(`DOUBLE\b`), Replacement: "BINARY_DOUBLE"},
		{Name: "float-to-binary-float", Pattern: typeRe(`FLOAT\b`), Replacement: "BINARY_FLOAT"},
		{Name: "longtext-to-clob", Pattern: typeRe(`(?:LONG|MEDIUM)?TEXT\b`), Replacement: "CLOB"},
		{Name: "longblob-to-blob", Pattern: typeRe(`(?:LONG|MEDIUM|TINY)?BLOB\b`), Replacement: "BLOB"},
		{Name: "datetime-to-date", Pattern: typeRe(`DATETIME\b`), Replacement: "DATE",
			Note: "MySQL DATETIME mapped to Oracle DATE; fractional seconds are lost"},
		{Name: "enum-to-varchar2", Pattern: typeRe(`ENUM\s*\([^)]*\)`), Replacement: "VARCHAR2(255)",
			Note: "ENUM constraint list dropped; add a CHECK constraint manually", NoteKind: core.WarnManualReview},
	}

	typeTables[dialect.Pair{Source: dialect.MySQL, Target: dialect.Postgres}] = []TypeMapping{
		{Name: "tinyint1-to-boolean", Pattern: typeRe(`TINYINT\s*\(\s*1\s*\)`), Replacement: "BOOLEAN",
			Note: "TINYINT(1) assumed to be boolean"},
		{Name: "tinyint-to-smallint", Pattern: typeRe(`TINYINT\b(?:\s*\(\s*\d+\s*\))?`), Replacement: "SMALLINT"},
		{Name: "mediumint-to-integer", Pattern: typeRe(`MEDIUMINT\b`), Replacement: "INTEGER"},
		{Name: "int-display-width", Pattern: typeRe(`(BIG|SMALL)?INT\s*\(\s*\d+\s*\)`), Replacement: "${1}INT"},
		{Name: "double-to-double-precision", Pattern: typeRe(`DOUBLE\b`), Replacement: "DOUBLE PRECISION"},
		{Name: "datetime-frac-to-timestamp", Pattern: typeRe(`DATETIME\s*\(\s*(\d+)\s*\)`), Replacement: "TIMESTAMP($1)"},
		{Name: "datetime-to-timestamp", Pattern: typeRe(`DATETIME\b`), Replacement: "TIMESTAMP"},
		{Name: "longtext-to-text", Pattern: typeRe(`(?:LONG|MEDIUM|TINY)?TEXT\b`), Replacement: "TEXT"},
		{Name: "blob-to-bytea", Pattern: typeRe(`(?:LONG|MEDIUM|TINY)?BLOB\b`), Replacement: "BYTEA"},
		{Name: "unsigned-dropped", Pattern: typeRe(`\s+UNSIGNED\b`), Replacement: "",
			Note: "UNSIGNED has no PostgreSQL equivalent; range check dropped"},
		{Name: "enum-to-text", Pattern: typeRe(`ENUM\s*\([^)]*\)`), Replacement: "TEXT",
			Note: "ENUM converted to TEXT; recreate as a CHECK constraint or a domain", NoteKind: core.WarnManualReview},
	}

	typeTables[dialect.Pair{Source: dialect.Postgres, Target: dialect.Oracle}] = []TypeMapping{
		{Name: "text-to-clob", Pattern: typeRe(`TEXT\b`), Replacement: "CLOB"},
		{Name: "bytea-to-blob", Pattern: typeRe(`BYTEA\b`), Replacement: "BLOB"},
		{Name: "boolean-to-number", Pattern: typeRe(`BOOLEAN\b`), Replacement: "NUMBER(1)",
			Note: "BOOLEAN mapped to NUMBER(1); TRUE/FALSE literals need rewriting"},
		{Name: "numeric-to-number", Pattern: typeRe(`NUMERIC\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)`), Replacement: "NUMBER($1,$2)"},
		{Name: "double-precision-to-binary-double", Pattern: typeRe(`DOUBLE\s+PRECISION\b`), Replacement: "BINARY_DOUBLE"},
		{Name: "jsonb-to-clob", Pattern: typeRe(`JSONB?\b`), Replacement: "CLOB",
			Note: "JSON typed storage has no direct Oracle analog here; CLOB chosen", NoteKind: core.WarnManualReview},
		{Name: "uuid-to-raw", Pattern: typeRe(`UUID\b`), Replacement: "RAW(16)",
			Note: "UUID mapped to RAW(16); textual UUID values need conversion"},
		{Name: "timestamptz-to-timestamp", Pattern: typeRe(`TIMESTAMPTZ\b`), Replacement: "TIMESTAMP WITH TIME ZONE"},
	}

	typeTables[dialect.Pair{Source: dialect.Postgres, Target: dialect.MySQL}] = []TypeMapping{
		{Name: "text-to-longtext", Pattern: typeRe(`TEXT\b`), Replacement: "LONGTEXT"},
		{Name: "bytea-to-longblob", Pattern: typeRe(`BYTEA\b`), Replacement: "LONGBLOB"},
		{Name: "boolean-to-tinyint", Pattern: typeRe(`BOOLEAN\b`), Replacement: "TINYINT(1)"},
		{Name: "numeric-to-decimal", Pattern: typeRe(`NUMERIC\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)`), Replacement: "DECIMAL($1,$2)"},
		{Name: "double-precision-to-double", Pattern: typeRe(`DOUBLE\s+PRECISION\b`), Replacement: "DOUBLE"},
		{Name: "jsonb-to-json", Pattern: typeRe(`JSONB\b`), Replacement: "JSON",
			Note: "JSONB indexing and operator support do not carry over", NoteKind: core.WarnPartialSupport},
		{Name: "uuid-to-char", Pattern: typeRe(`UUID\b`), Replacement: "CHAR(36)",
			Note: "UUID stored as CHAR(36); uniqueness must come from application logic"},
		{Name: "timestamptz-to-timestamp", Pattern: typeRe(`TIMESTAMPTZ\b`), Replacement: "TIMESTAMP",
			Note: "time zone information is lost"},
	}
}
