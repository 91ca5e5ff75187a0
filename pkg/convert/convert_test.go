package convert

import (
	"context"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine { return New(Config{}) }

func TestSameDialectIsRejected(t *testing.T) {
	_, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "SELECT 1",
		Source: dialect.Oracle,
		Target: dialect.Oracle,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dialect.ErrSameDialect)
}

func TestUnknownDialectIsRejected(t *testing.T) {
	_, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "SELECT 1",
		Source: dialect.Dialect("db2"),
		Target: dialect.MySQL,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func TestNVLBecomesIfnullWithProvenance(t *testing.T) {
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "SELECT NVL(salary, 0) FROM employees",
		Source: dialect.Oracle,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT IFNULL(salary, 0) FROM employees", res.SQL)
	var found bool
	for _, r := range res.AppliedRules {
		if strings.Contains(r, "NVL") {
			found = true
		}
	}
	assert.True(t, found, "an applied rule must name NVL")
}

func TestBitmapIndexScenario(t *testing.T) {
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "CREATE BITMAP INDEX idx_status ON orders(status)",
		Source: dialect.Oracle,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	assert.Contains(t, res.SQL, "CREATE INDEX idx_status")
	assert.NotContains(t, res.SQL, "BITMAP INDEX")
	var warned bool
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "BITMAP") {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning naming BITMAP")
}

func TestOnConflictScenario(t *testing.T) {
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "INSERT INTO t (id) VALUES (1) ON CONFLICT DO NOTHING",
		Source: dialect.Postgres,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT IGNORE INTO t (id) VALUES (1)", res.SQL)
}

func TestMergeDeleteScenario(t *testing.T) {
	sql := `MERGE INTO inv t USING src s ON (t.id = s.id)
WHEN MATCHED THEN UPDATE SET qty = s.qty
DELETE WHERE s.qty = 0`
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    sql,
		Source: dialect.Oracle,
		Target: dialect.Postgres,
	})
	require.NoError(t, err)
	assert.Contains(t, res.SQL, "MERGE INTO", "the statement must be left unchanged")
	var found bool
	for _, w := range res.Warnings {
		if w.Kind == core.WarnPartialSupport && strings.Contains(w.Message, "DELETE") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTruncatedInsertIsRecovered(t *testing.T) {
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "INSERT INTO t (a, b, c) VALUES (1, 2, 3",
		Source: dialect.Oracle,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES (1, 2, 3)", res.SQL)
	var recovered bool
	for _, r := range res.AppliedRules {
		if strings.Contains(r, "recovery") {
			recovered = true
		}
	}
	assert.True(t, recovered)
}

func TestRoundTripRestoresFunction(t *testing.T) {
	eng := newTestEngine()
	ctx := context.Background()
	first, err := eng.Convert(ctx, Request{
		SQL: "SELECT NVL(a, 0) FROM t", Source: dialect.Oracle, Target: dialect.MySQL,
	})
	require.NoError(t, err)
	second, err := eng.Convert(ctx, Request{
		SQL: first.SQL, Source: dialect.MySQL, Target: dialect.Oracle,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT NVL(a, 0) FROM t", second.SQL)
}

func TestAppliedRuleCausality(t *testing.T) {
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "SELECT col_a FROM plain_table",
		Source: dialect.Oracle,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT col_a FROM plain_table", res.SQL)
	assert.Empty(t, res.AppliedRules, "no text change means no applied rules")
}

func TestOutputBalanceOnValidInput(t *testing.T) {
	inputs := []string{
		"SELECT NVL(a, 'x') FROM t WHERE b = TO_CHAR(c, 'YYYY-MM-DD')",
		"CREATE TABLE t (id NUMBER(10), name VARCHAR2(50))",
		"SELECT DECODE(s, 1, 'one', 'other') FROM t",
	}
	for _, sql := range inputs {
		res, err := newTestEngine().Convert(context.Background(), Request{
			SQL: sql, Source: dialect.Oracle, Target: dialect.MySQL,
		})
		require.NoError(t, err)
		for _, w := range res.Validation {
			assert.NotContains(t, w.Message, "unbalanced", "input %q", sql)
		}
	}
}

func TestChunkedConversionPreservesOrder(t *testing.T) {
	stmts := []string{
		"SELECT NVL(a1, 0) FROM t1;",
		"\nSELECT NVL(a2, 0) FROM t2;",
		"\nSELECT NVL(a3, 0) FROM t3;",
		"\nSELECT NVL(a4, 0) FROM t4;",
	}
	eng := New(Config{Workers: 4, ChunkThreshold: 8})
	res, err := eng.Convert(context.Background(), Request{
		SQL:    strings.Join(stmts, ""),
		Source: dialect.Oracle,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	want := strings.ReplaceAll(strings.Join(stmts, ""), "NVL", "IFNULL")
	assert.Equal(t, want, res.SQL)

	// Rule provenance must follow chunk order as well.
	var tables []string
	for _, r := range res.AppliedRules {
		if strings.Contains(r, "IFNULL") {
			tables = append(tables, r)
		}
	}
	assert.Len(t, tables, 4)
}

func TestChunkedSingleStatement(t *testing.T) {
	eng := New(Config{ChunkThreshold: 8})
	res, err := eng.Convert(context.Background(), Request{
		SQL:    "SELECT NVL(a, 0) FROM t",
		Source: dialect.Oracle,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT IFNULL(a, 0) FROM t", res.SQL)
}

func TestChunkFailureDoesNotPoisonSiblings(t *testing.T) {
	eng := New(Config{Workers: 2, ChunkThreshold: 8})
	res, err := eng.Convert(context.Background(), Request{
		SQL:    "SELECT NVL(a, 0) FROM t1;\nTHIS IS NOT SQL AT ALL;\nSELECT NVL(b, 0) FROM t2;",
		Source: dialect.Oracle,
		Target: dialect.MySQL,
	})
	require.NoError(t, err)
	assert.Contains(t, res.SQL, "SELECT IFNULL(a, 0) FROM t1")
	assert.Contains(t, res.SQL, "SELECT IFNULL(b, 0) FROM t2")
	assert.Contains(t, res.SQL, "THIS IS NOT SQL AT ALL")
}

func TestMinimalProfileSkipsFeatureConverters(t *testing.T) {
	cfg := core.MinimalConfig()
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "CREATE BITMAP INDEX idx ON t(c)",
		Source: dialect.Oracle,
		Target: dialect.MySQL,
		Config: &cfg,
	})
	require.NoError(t, err)
	assert.Contains(t, res.SQL, "BITMAP")
}

func TestWarningsToggleKeepsErrors(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Warnings = false
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "SELECT * FROM employees@hq_link",
		Source: dialect.Oracle,
		Target: dialect.Postgres,
		Config: &cfg,
	})
	require.NoError(t, err)
	for _, w := range res.Warnings {
		assert.Equal(t, core.SeverityError, w.Severity)
	}
}

func TestResultCarriesIDAndElapsed(t *testing.T) {
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL: "SELECT 1", Source: dialect.MySQL, Target: dialect.Postgres,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", res.ID.String())
	assert.GreaterOrEqual(t, res.Elapsed.Nanoseconds(), int64(0))
}

func TestComplexityReportedWhenParseable(t *testing.T) {
	res, err := newTestEngine().Convert(context.Background(), Request{
		SQL:    "SELECT COUNT(*) FROM a JOIN b ON a.id = b.id",
		Source: dialect.MySQL,
		Target: dialect.Postgres,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Complexity)
	assert.Equal(t, 1, res.Complexity.Joins)
}
