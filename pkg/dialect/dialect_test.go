package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
	}{
		{"oracle", Oracle},
		{"Oracle", Oracle},
		{"ORA", Oracle},
		{"mysql", MySQL},
		{"mariadb", MySQL},
		{"postgres", Postgres},
		{"PostgreSQL", Postgres},
		{"pg", Postgres},
		{" pg ", Postgres},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("sqlite")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestValidatePair(t *testing.T) {
	require.NoError(t, ValidatePair(Oracle, MySQL))
	require.NoError(t, ValidatePair(Postgres, Oracle))

	assert.ErrorIs(t, ValidatePair(Oracle, Oracle), ErrSameDialect)
	assert.ErrorIs(t, ValidatePair(Dialect("db2"), MySQL), ErrUnknownDialect)
	assert.ErrorIs(t, ValidatePair(Oracle, Dialect("")), ErrUnknownDialect)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`order`", MySQL.QuoteIdentifier("order"))
	assert.Equal(t, `"order"`, Postgres.QuoteIdentifier("order"))
	assert.Equal(t, `"us""er"`, Oracle.QuoteIdentifier(`us"er`))
}

func TestNowExpr(t *testing.T) {
	assert.Equal(t, "SYSDATE", Oracle.NowExpr())
	assert.Equal(t, "NOW()", MySQL.NowExpr())
	assert.Equal(t, "CURRENT_TIMESTAMP", Postgres.NowExpr())
}
