package preprocess

import (
	"testing"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, sql string, target dialect.Dialect) (string, core.Accumulator) {
	t.Helper()
	var acc core.Accumulator
	out := Run(sql, target, &acc)
	return out, acc
}

func TestStripTablespace(t *testing.T) {
	out, acc := run(t, "CREATE TABLE t (id NUMBER) TABLESPACE users", dialect.MySQL)
	assert.Equal(t, "CREATE TABLE t (id NUMBER)", out)
	require.NotEmpty(t, acc.Rules)
	assert.Contains(t, acc.Rules[0], "strip-tablespace")
}

func TestStripStorageAndPct(t *testing.T) {
	sql := "CREATE TABLE t (id NUMBER) PCTFREE 10 INITRANS 2 STORAGE (INITIAL 64K NEXT 1M)"
	out, _ := run(t, sql, dialect.Postgres)
	assert.Equal(t, "CREATE TABLE t (id NUMBER)", out)
}

func TestStripLoggingAndCompress(t *testing.T) {
	out, _ := run(t, "CREATE TABLE t (id NUMBER) NOLOGGING COMPRESS 2", dialect.MySQL)
	assert.Equal(t, "CREATE TABLE t (id NUMBER)", out)
}

func TestStripIndexScope(t *testing.T) {
	out, _ := run(t, "CREATE INDEX idx ON t (c) LOCAL", dialect.Postgres)
	assert.Equal(t, "CREATE INDEX idx ON t (c)", out)
}

func TestStripHints(t *testing.T) {
	out, acc := run(t, "SELECT /*+ INDEX(t idx) */ c FROM t", dialect.MySQL)
	assert.Equal(t, "SELECT  c FROM t", out)
	assert.NotEmpty(t, acc.Warnings)
}

func TestHintsKeptForOracleTarget(t *testing.T) {
	sql := "SELECT /*+ INDEX(t idx) */ c FROM t"
	out, _ := run(t, sql, dialect.Oracle)
	assert.Equal(t, sql, out)
}

func TestStripMySQLTableOptions(t *testing.T) {
	sql := "CREATE TABLE t (id INT) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	out, _ := run(t, sql, dialect.Postgres)
	assert.Equal(t, "CREATE TABLE t (id INT)", out)
}

func TestBacktickQuotes(t *testing.T) {
	out, _ := run(t, "SELECT `order` FROM `t`", dialect.Postgres)
	assert.Equal(t, `SELECT "order" FROM "t"`, out)
}

func TestDefaultSysdate(t *testing.T) {
	out, _ := run(t, "CREATE TABLE t (ts DATE DEFAULT SYSDATE)", dialect.MySQL)
	assert.Contains(t, out, "DEFAULT NOW()")

	out, _ = run(t, "CREATE TABLE t (ts DATE DEFAULT SYSDATE)", dialect.Postgres)
	assert.Contains(t, out, "DEFAULT CURRENT_TIMESTAMP")
}

func TestStripFromDual(t *testing.T) {
	out, _ := run(t, "SELECT 1 FROM DUAL", dialect.MySQL)
	assert.Equal(t, "SELECT 1", out)
}

func TestSysSchemaPrefix(t *testing.T) {
	out, _ := run(t, "BEGIN SYS.DBMS_OUTPUT.PUT_LINE('x'); END;", dialect.Postgres)
	assert.Contains(t, out, "DBMS_OUTPUT.PUT_LINE")
	assert.NotContains(t, out, "SYS.DBMS_OUTPUT")
}

func TestLiteralsUntouched(t *testing.T) {
	sql := "INSERT INTO t (c) VALUES ('TABLESPACE users NOLOGGING')"
	out, acc := run(t, sql, dialect.MySQL)
	assert.Equal(t, sql, out)
	assert.Empty(t, acc.Rules)
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		"CREATE TABLE t (id NUMBER) TABLESPACE users PCTFREE 10 NOLOGGING",
		"SELECT /*+ FULL(t) */ c FROM t WHERE x = 'PCTFREE 10'",
		"CREATE TABLE t (id INT) ENGINE=InnoDB DEFAULT CHARSET=latin1",
		"SELECT `a` FROM `b`",
		"CREATE TABLE t (ts DATE DEFAULT SYSDATE)",
		"SELECT 1 FROM DUAL",
		"plain text that is not sql at all",
		"",
	}
	for _, target := range []dialect.Dialect{dialect.MySQL, dialect.Postgres, dialect.Oracle} {
		for _, sql := range inputs {
			var acc1, acc2 core.Accumulator
			once := Run(sql, target, &acc1)
			twice := Run(once, target, &acc2)
			assert.Equal(t, once, twice, "target=%s input=%q", target, sql)
		}
	}
}

func TestRuleCausality(t *testing.T) {
	// Every recorded rule must correspond to an actual change.
	sql := "SELECT c FROM t"
	out, acc := run(t, sql, dialect.MySQL)
	assert.Equal(t, sql, out)
	assert.Empty(t, acc.Rules)
	assert.Empty(t, acc.Warnings)
}

func TestStripPhysicalAttributes(t *testing.T) {
	sql := "CREATE TABLE t (id NUMBER) TABLESPACE users STORAGE (INITIAL 1M) PCTFREE 10"
	assert.True(t, HasPhysicalAttributes(sql))
	out := StripPhysicalAttributes(sql)
	assert.Equal(t, "CREATE TABLE t (id NUMBER)", out)
	assert.False(t, HasPhysicalAttributes(out))
}
