package translate

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNVLToIFNULL(t *testing.T) {
	var acc core.Accumulator
	got := Functions("SELECT NVL(a, 0) FROM t", dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, "SELECT IFNULL(a, 0) FROM t", got)
	require.NotEmpty(t, acc.Rules)
	assert.Contains(t, acc.Rules[0], "NVL")
}

func TestRoundTripRestoresNVL(t *testing.T) {
	var acc core.Accumulator
	mysql := Functions("SELECT NVL(a, 0) FROM t", dialect.Oracle, dialect.MySQL, &acc)
	oracle := Functions(mysql, dialect.MySQL, dialect.Oracle, &acc)
	assert.Equal(t, "SELECT NVL(a, 0) FROM t", oracle)
}

func TestSwapArgs(t *testing.T) {
	var acc core.Accumulator
	got := Functions("SELECT LOCATE('x', name) FROM t", dialect.MySQL, dialect.Postgres, &acc)
	assert.Equal(t, "SELECT STRPOS(name, 'x') FROM t", got)
}

func TestDecodeToCase(t *testing.T) {
	var acc core.Accumulator
	got := Functions("SELECT DECODE(status, 1, 'open', 2, 'closed', 'other') FROM t",
		dialect.Oracle, dialect.Postgres, &acc)
	assert.Equal(t,
		"SELECT CASE WHEN status = 1 THEN 'open' WHEN status = 2 THEN 'closed' ELSE 'other' END FROM t",
		got)
}

func TestNVL2Template(t *testing.T) {
	var acc core.Accumulator
	got := Functions("SELECT NVL2(a, b, c) FROM t", dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, "SELECT CASE WHEN a IS NOT NULL THEN b ELSE c END FROM t", got)
}

func TestDateFormatTokens(t *testing.T) {
	var acc core.Accumulator
	got := Functions("SELECT TO_CHAR(created, 'YYYY-MM-DD') FROM t", dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, "SELECT DATE_FORMAT(created, '%Y-%m-%d') FROM t", got)
}

func TestBareSysdate(t *testing.T) {
	var acc core.Accumulator
	got := Functions("SELECT SYSDATE FROM v", dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, "SELECT NOW() FROM v", got)
}

func TestUnmappedPassThrough(t *testing.T) {
	var acc core.Accumulator
	sql := "SELECT UPPER(name), SUBSTR(name, 1, 3) FROM t"
	got := Functions(sql, dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, sql, got)
	assert.Empty(t, acc.Rules)
}

func TestLiteralContentIgnored(t *testing.T) {
	var acc core.Accumulator
	sql := "SELECT 'NVL(a,b)' FROM t"
	got := Functions(sql, dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, sql, got)
}

func TestMappingNoteProducesWarning(t *testing.T) {
	var acc core.Accumulator
	Functions("SELECT TO_NUMBER(x) FROM t", dialect.Oracle, dialect.MySQL, &acc)
	require.NotEmpty(t, acc.Warnings)
	assert.Equal(t, core.WarnDataTypeMismatch, acc.Warnings[0].Kind)
}

func TestDataTypesPreservePrecision(t *testing.T) {
	var acc core.Accumulator
	got := DataTypes("CREATE TABLE t (amount NUMBER(12,2), name VARCHAR2(200))",
		dialect.Oracle, dialect.MySQL, &acc)
	assert.Contains(t, got, "DECIMAL(12,2)")
	assert.Contains(t, got, "VARCHAR(200)")
}

func TestDataTypesClobAndBlob(t *testing.T) {
	var acc core.Accumulator
	got := DataTypes("CREATE TABLE t (body CLOB, img BLOB)", dialect.Oracle, dialect.Postgres, &acc)
	assert.Contains(t, got, "TEXT")
	assert.Contains(t, got, "BYTEA")
}

func TestDataTypesMySQLToOracle(t *testing.T) {
	var acc core.Accumulator
	got := DataTypes("CREATE TABLE t (id BIGINT, note TEXT)", dialect.MySQL, dialect.Oracle, &acc)
	assert.Contains(t, got, "NUMBER(19)")
	assert.Contains(t, got, "CLOB")
}

func TestRownumToLimit(t *testing.T) {
	var acc core.Accumulator
	got := Operators("SELECT * FROM t WHERE ROWNUM <= 10", dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, "SELECT * FROM t LIMIT 10", got)
}

func TestLimitToFetch(t *testing.T) {
	var acc core.Accumulator
	got := Operators("SELECT * FROM t LIMIT 10 OFFSET 20", dialect.MySQL, dialect.Oracle, &acc)
	assert.Equal(t, "SELECT * FROM t OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY", got)
}

func TestConcatExpansionForOracle(t *testing.T) {
	var acc core.Accumulator
	got := Operators("SELECT CONCAT(a, b, c) FROM t", dialect.MySQL, dialect.Oracle, &acc)
	assert.Equal(t, "SELECT (a || b || c) FROM t", got)
}

func TestCastOperatorRewrite(t *testing.T) {
	var acc core.Accumulator
	got := Operators("SELECT total::numeric(10,2) FROM t", dialect.Postgres, dialect.MySQL, &acc)
	assert.Equal(t, "SELECT CAST(total AS numeric(10,2)) FROM t", got)
}

func TestConcatWarningForMySQLTarget(t *testing.T) {
	var acc core.Accumulator
	Operators("SELECT a || b FROM t", dialect.Oracle, dialect.MySQL, &acc)
	require.NotEmpty(t, acc.Warnings)
	assert.True(t, strings.Contains(acc.Warnings[0].Message, "PIPES_AS_CONCAT") ||
		strings.Contains(acc.Warnings[0].Suggestion, "PIPES_AS_CONCAT"))
}
