package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestConvertFromStdin(t *testing.T) {
	out, _, err := execute(t, "SELECT NVL(a, 0) FROM t",
		"convert", "--from", "oracle", "--to", "mysql")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT IFNULL(a, 0) FROM t")
}

func TestConvertFromFileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.sql")
	outFile := filepath.Join(dir, "out.sql")
	require.NoError(t, os.WriteFile(in, []byte("SELECT NVL(a, 0) FROM t"), 0o600))

	_, errOut, err := execute(t, "",
		"convert", "--from", "oracle", "--to", "postgres", "--out", outFile, in)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Wrote")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "COALESCE(a, 0)")
}

func TestConvertRequiresDialectFlags(t *testing.T) {
	_, _, err := execute(t, "SELECT 1", "convert", "--to", "mysql")
	assert.Error(t, err)
}

func TestConvertRejectsUnknownDialect(t *testing.T) {
	_, _, err := execute(t, "SELECT 1", "convert", "--from", "db2", "--to", "mysql")
	assert.Error(t, err)
}

func TestConvertRejectsSameDialect(t *testing.T) {
	_, _, err := execute(t, "SELECT 1", "convert", "--from", "mysql", "--to", "mysql")
	assert.Error(t, err)
}

func TestConvertSaveAndHistoryList(t *testing.T) {
	histPath := filepath.Join(t.TempDir(), "history.db")

	_, _, err := execute(t, "SELECT NVL(a, 0) FROM t",
		"convert", "--from", "oracle", "--to", "mysql", "--save", "--history", histPath)
	require.NoError(t, err)

	out, _, err := execute(t, "", "history", "list", "--history", histPath)
	require.NoError(t, err)
	assert.Contains(t, out, "oracle")
	assert.Contains(t, out, "mysql")
}

func TestHistoryListEmpty(t *testing.T) {
	histPath := filepath.Join(t.TempDir(), "history.db")
	out, _, err := execute(t, "", "history", "list", "--history", histPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No conversions recorded.")
}

func TestHistoryShowMissingEntry(t *testing.T) {
	histPath := filepath.Join(t.TempDir(), "history.db")
	_, _, err := execute(t, "", "history", "show", "nope", "--history", histPath)
	assert.Error(t, err)
}

func TestValidateReportsLostClause(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "orig.sql")
	conv := filepath.Join(dir, "conv.sql")
	require.NoError(t, os.WriteFile(orig, []byte("SELECT a FROM t WHERE b = 1"), 0o600))
	require.NoError(t, os.WriteFile(conv, []byte("SELECT a FROM t"), 0o600))

	out, _, err := execute(t, "", "validate", orig, conv)
	require.Error(t, err)
	assert.Contains(t, out, "WHERE")
}

func TestValidateCleanPair(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "orig.sql")
	conv := filepath.Join(dir, "conv.sql")
	require.NoError(t, os.WriteFile(orig, []byte("SELECT IFNULL(a, 0) FROM t"), 0o600))
	require.NoError(t, os.WriteFile(conv, []byte("SELECT COALESCE(a, 0) FROM t"), 0o600))

	out, _, err := execute(t, "", "validate", orig, conv)
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found.")
}

func TestDialectsCommand(t *testing.T) {
	out, _, err := execute(t, "", "dialects")
	require.NoError(t, err)
	assert.Contains(t, out, "oracle")
	assert.Contains(t, out, "mysql")
	assert.Contains(t, out, "postgres")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlbridge v")
}

func TestConvertJSONOutput(t *testing.T) {
	out, _, err := execute(t, "SELECT NVL(a, 0) FROM t",
		"convert", "--from", "oracle", "--to", "mysql", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"sql"`)
	assert.Contains(t, out, "IFNULL")
}
