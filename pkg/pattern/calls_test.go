package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCalls(t *testing.T) {
	calls := FindCalls("SELECT NVL(a, 0), nvl(b, c) FROM t WHERE s = 'NVL(x,y)'", "NVL")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"a", "0"}, calls[0].Args)
	assert.Equal(t, []string{"b", "c"}, calls[1].Args)
	assert.Equal(t, "nvl", calls[1].Name)
}

func TestFindCallsNested(t *testing.T) {
	sql := "SELECT DECODE(x, 1, NVL(a, 'one,two'), 2, b, c) FROM t"
	calls := FindCalls(sql, "DECODE")
	require.Len(t, calls, 1)
	// Six top-level arguments; the comma inside the literal does not split.
	require.Len(t, calls[0].Args, 6)
	assert.Equal(t, "NVL(a, 'one,two')", calls[0].Args[2])
	assert.Equal(t, []string{"2", "b", "c"}, calls[0].Args[3:])
}

func TestFindCallsWordBoundary(t *testing.T) {
	assert.Empty(t, FindCalls("SELECT MANVL(a, 0) FROM t", "NVL"))
}

func TestFindCallsUnbalanced(t *testing.T) {
	assert.Empty(t, FindCalls("SELECT NVL(a, 0 FROM t", "NVL"))
}

func TestSplitArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "f(b, c)", "'x,y'"}, SplitArgs("a, f(b, c), 'x,y'"))
	assert.Nil(t, SplitArgs("  "))
}

func TestRewriteCalls(t *testing.T) {
	sql := "SELECT NVL(a, 0) + NVL(b, 1) FROM t"
	got := RewriteCalls(sql, "NVL", func(c Call) *string {
		s := "COALESCE(" + c.Args[0] + ", " + c.Args[1] + ")"
		return &s
	})
	assert.Equal(t, "SELECT COALESCE(a, 0) + COALESCE(b, 1) FROM t", got)
}

func TestRewriteCallsSkip(t *testing.T) {
	sql := "SELECT NVL(a, 0) FROM t"
	got := RewriteCalls(sql, "NVL", func(Call) *string { return nil })
	assert.Equal(t, sql, got)
}
