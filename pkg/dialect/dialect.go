// Package dialect defines the SQL dialects the engine converts between.
//
// A Dialect is pure data: name, quoting style, and a few per-dialect
// constants that converters consult. Concrete conversion behavior lives in
// pkg/translate and pkg/feature.
package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// Dialect identifies one of the supported SQL vendor profiles.
type Dialect string

const (
	// Oracle covers Oracle-like syntax and semantics.
	Oracle Dialect = "oracle"
	// MySQL covers MySQL-like syntax and semantics.
	MySQL Dialect = "mysql"
	// Postgres covers PostgreSQL-like syntax and semantics.
	Postgres Dialect = "postgres"
)

// All lists the supported dialects in display order.
var All = []Dialect{Oracle, MySQL, Postgres}

// ErrUnknownDialect is returned when a dialect name cannot be resolved.
var ErrUnknownDialect = errors.New("unknown dialect")

// ErrSameDialect is returned when source and target dialect are identical.
// Same-dialect requests are a configuration error, not a no-op.
var ErrSameDialect = errors.New("source and target dialect are the same")

// aliases maps accepted spellings to canonical dialects.
var aliases = map[string]Dialect{
	"oracle":     Oracle,
	"ora":        Oracle,
	"oracledb":   Oracle,
	"mysql":      MySQL,
	"mariadb":    MySQL,
	"maria":      MySQL,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pg":         Postgres,
	"pgsql":      Postgres,
}

// Parse resolves a dialect name, accepting common aliases
// ("pg", "mariadb", ...). Matching is case-insensitive.
func Parse(name string) (Dialect, error) {
	d, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: oracle, mysql, postgres)", ErrUnknownDialect, name)
	}
	return d, nil
}

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	return d == Oracle || d == MySQL || d == Postgres
}

// String returns the canonical dialect name.
func (d Dialect) String() string { return string(d) }

// NowExpr returns the dialect's current-timestamp expression.
func (d Dialect) NowExpr() string {
	switch d {
	case Oracle:
		return "SYSDATE"
	case MySQL:
		return "NOW()"
	default:
		return "CURRENT_TIMESTAMP"
	}
}

// QuoteIdentifier quotes an identifier in the dialect's quoting style.
func (d Dialect) QuoteIdentifier(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// LineCommentPrefix returns the prefix used when converters comment out an
// untranslatable span. All three dialects accept "--".
func (d Dialect) LineCommentPrefix() string { return "--" }

// Pair is a (source, target) dialect combination.
type Pair struct {
	Source Dialect
	Target Dialect
}

// ValidatePair checks that src and tgt form a convertible dialect pair.
func ValidatePair(src, tgt Dialect) error {
	if !src.Valid() {
		return fmt.Errorf("source: %w: %q", ErrUnknownDialect, src)
	}
	if !tgt.Valid() {
		return fmt.Errorf("target: %w: %q", ErrUnknownDialect, tgt)
	}
	if src == tgt {
		return ErrSameDialect
	}
	return nil
}
