package pattern

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskPreservesLength(t *testing.T) {
	tests := []string{
		"SELECT 1",
		"SELECT 'a''b' FROM t -- trailing",
		"SELECT /* block\ncomment */ c FROM t WHERE x = 'y'",
		"SELECT `col` FROM t WHERE n = \"quoted\"",
		"SELECT 'unterminated",
	}
	for _, sql := range tests {
		assert.Len(t, Mask(sql), len(sql), sql)
	}
}

func TestMaskHidesLiteralContent(t *testing.T) {
	masked := Mask("SELECT 'NVL(a,b)' FROM t")
	assert.NotContains(t, masked, "NVL")
	assert.Contains(t, masked, "SELECT")
	assert.Contains(t, masked, "FROM t")
}

func TestMaskHidesComments(t *testing.T) {
	masked := Mask("SELECT c -- NVL here\nFROM t /* NVL there */")
	assert.NotContains(t, masked, "NVL")
	// Newlines survive so line numbers stay stable.
	assert.Contains(t, masked, "\n")
}

func TestMaskStringsKeepsComments(t *testing.T) {
	masked := MaskStrings("SELECT /*+ INDEX(t) */ 'NVL' FROM t")
	assert.Contains(t, masked, "/*+ INDEX(t) */")
	assert.NotContains(t, masked, "NVL")
}

func TestMaskDoubledQuoteEscape(t *testing.T) {
	masked := Mask("SELECT 'it''s' FROM t WHERE a = 'b'")
	assert.NotContains(t, masked, "it")
	assert.Contains(t, masked, "FROM t WHERE a =")
}

func TestReplaceAllOutside(t *testing.T) {
	re := regexp.MustCompile(`(?i)\bNVL\b`)
	got := ReplaceAllOutside("SELECT NVL(a, 'NVL') FROM t", re, "IFNULL")
	assert.Equal(t, "SELECT IFNULL(a, 'NVL') FROM t", got)
}

func TestReplaceAllOutsideSkipsComments(t *testing.T) {
	re := regexp.MustCompile(`(?i)\bSYSDATE\b`)
	got := ReplaceAllOutside("SELECT SYSDATE FROM dual -- SYSDATE", re, "NOW()")
	assert.Equal(t, "SELECT NOW() FROM dual -- SYSDATE", got)
}

func TestMatchesOutside(t *testing.T) {
	re := regexp.MustCompile(`(?i)\bMERGE\b`)
	assert.True(t, MatchesOutside("MERGE INTO t USING s ON (1=1)", re))
	assert.False(t, MatchesOutside("SELECT 'MERGE' FROM t", re))
	assert.False(t, MatchesOutside("SELECT c FROM t -- MERGE", re))
}

func TestCountOutside(t *testing.T) {
	require.Equal(t, 2, CountOutside("SELECT f(x), (1) FROM t WHERE s = '((('", '('))
}

func TestUnescapedQuoteCount(t *testing.T) {
	assert.Equal(t, 2, UnescapedQuoteCount("SELECT 'it''s'"))
	assert.Equal(t, 1, UnescapedQuoteCount("SELECT 'oops"))
}
