package validate

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanConversionHasNoFindings(t *testing.T) {
	orig := "SELECT id, name FROM users WHERE id = 1"
	conv := "SELECT id, name FROM users WHERE id = 1"
	assert.Empty(t, Check(orig, conv, Options{}))
}

func TestUnbalancedParens(t *testing.T) {
	warns := Check("SELECT COUNT(id) FROM t", "SELECT COUNT(id FROM t", Options{})
	require.NotEmpty(t, warns)
	assert.Equal(t, core.SeverityError, warns[0].Severity)
	assert.Contains(t, warns[0].Message, "parentheses")
}

func TestParensInsideLiteralsDoNotCount(t *testing.T) {
	sql := "SELECT ':-(' FROM t"
	assert.Empty(t, Check(sql, sql, Options{}))
}

func TestUnbalancedQuotes(t *testing.T) {
	warns := Check("SELECT 'ok' FROM t", "SELECT 'ok FROM t", Options{})
	require.NotEmpty(t, warns)
	assert.Contains(t, warns[0].Message, "quotes")
}

func TestDoubledQuotesAreEscapes(t *testing.T) {
	sql := "SELECT 'it''s fine' FROM t"
	assert.Empty(t, Check(sql, sql, Options{}))
}

func TestLostWhereClause(t *testing.T) {
	warns := Check("SELECT * FROM t WHERE id = 1", "SELECT * FROM t", Options{})
	require.NotEmpty(t, warns)
	var found bool
	for _, w := range warns {
		if strings.Contains(w.Message, "WHERE") && w.Severity == core.SeverityError {
			found = true
		}
	}
	assert.True(t, found)
}

func TestKeywordInLiteralNotCounted(t *testing.T) {
	orig := "SELECT 'WHERE' FROM t"
	conv := "SELECT 'X' FROM t"
	for _, w := range Check(orig, conv, Options{}) {
		assert.NotContains(t, w.Message, "WHERE")
	}
}

func TestFunctionCountDrop(t *testing.T) {
	orig := "SELECT NVL(a, 0), UPPER(b), LOWER(c), TRIM(d) FROM t"
	conv := "SELECT a, b, c, TRIM(d) FROM t"
	warns := Check(orig, conv, Options{})
	require.NotEmpty(t, warns)
	assert.Contains(t, warns[0].Message, "function calls")
}

func TestLargeInList(t *testing.T) {
	conv := "SELECT * FROM t WHERE id IN (1, 2, 3, 4, 5)"
	warns := Check(conv, conv, Options{MaxInListSize: 3})
	var found bool
	for _, w := range warns {
		if w.Kind == core.WarnPerformance && strings.Contains(w.Message, "IN list") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestInListWithinLimit(t *testing.T) {
	conv := "SELECT id FROM t WHERE id IN (1, 2)"
	for _, w := range Check(conv, conv, Options{MaxInListSize: 3}) {
		assert.NotContains(t, w.Message, "IN list")
	}
}

func TestDeepSubqueryNesting(t *testing.T) {
	conv := "SELECT a FROM (SELECT a FROM (SELECT a FROM (SELECT a FROM (SELECT a FROM t) x) y) z) w"
	warns := Check(conv, conv, Options{MaxSubqueryDepth: 3})
	var found bool
	for _, w := range warns {
		if strings.Contains(w.Message, "nest") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLeadingWildcardLike(t *testing.T) {
	conv := "SELECT id FROM t WHERE name LIKE '%smith'"
	warns := Check(conv, conv, Options{})
	require.NotEmpty(t, warns)
	assert.Equal(t, core.WarnPerformance, warns[0].Kind)
	assert.Contains(t, warns[0].Message, "leading wildcard")
}

func TestLeadingWildcardInCommentIgnored(t *testing.T) {
	conv := "SELECT id FROM t -- LIKE '%smith'"
	warns := Check(conv, conv, Options{})
	assert.Empty(t, warns)
}

func TestSelectStarIsInfoOnly(t *testing.T) {
	conv := "SELECT * FROM t"
	warns := Check(conv, conv, Options{})
	require.Len(t, warns, 1)
	assert.Equal(t, core.SeverityInfo, warns[0].Severity)
}

func TestFromConfig(t *testing.T) {
	cfg := core.StrictConfig()
	opts := FromConfig(cfg)
	assert.Equal(t, cfg.MaxInListSize, opts.MaxInListSize)
	assert.Equal(t, cfg.MaxSubqueryDepth, opts.MaxSubqueryDepth)
}
