package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleSelect(t *testing.T) {
	stmts, cx, err := Parse("SELECT a, b FROM t WHERE a = 1")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, 0, cx.Joins)
	assert.Equal(t, "simple", cx.Difficulty())
}

func TestParseComplexity(t *testing.T) {
	sql := `SELECT t1.a, COUNT(*), IFNULL(t2.b, 0)
		FROM t1 JOIN t2 ON t1.id = t2.id
		WHERE t1.c IN (SELECT c FROM t3)
		GROUP BY t1.a`
	_, cx, err := Parse(sql)
	require.NoError(t, err)
	assert.Equal(t, 1, cx.Joins)
	assert.Equal(t, 1, cx.Subqueries)
	assert.Equal(t, 1, cx.Aggregates)
	assert.GreaterOrEqual(t, cx.Functions, 1)
}

func TestParseCTE(t *testing.T) {
	sql := "WITH x AS (SELECT 1 AS n) SELECT n FROM x"
	_, cx, err := Parse(sql)
	require.NoError(t, err)
	assert.Equal(t, 1, cx.CTEs)
}

func TestParseFailurePosition(t *testing.T) {
	_, _, err := Parse("SELECT FROM WHERE")
	require.Error(t, err)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.NotEmpty(t, f.Message)
	assert.Greater(t, f.Line, 0)
}

func TestParseMultiStatement(t *testing.T) {
	stmts, _, err := Parse("SELECT 1; SELECT 2;")
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
}

func TestParseOracleSyntaxFails(t *testing.T) {
	// Oracle-only constructs are expected to fail structural parsing and
	// flow into the recovery service.
	_, _, err := Parse("SELECT seq.NEXTVAL FROM dual CONNECT BY LEVEL <= 10 START WITH 1=1")
	require.Error(t, err)
}
