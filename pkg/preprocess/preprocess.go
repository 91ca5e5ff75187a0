// Package preprocess normalizes source-only physical syntax before any
// structural parsing or conversion happens: Oracle storage clauses, MySQL
// table options, sqlplus terminators, and similar vendor noise that no
// target dialect understands.
//
// The pipeline is a fixed, hand-ordered list. Several rules are not
// commutative; in particular, schema-prefix normalization must run after
// the storage-clause strips so identifier rewriting never sees half-removed
// physical attributes. Running the pipeline twice produces the same output
// as running it once.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

// Processor is one single-purpose normalization step. A processor that
// finds nothing to do returns its input unchanged; processors never fail.
type Processor struct {
	Name    string
	Applies func(target dialect.Dialect) bool // nil means every target
	Rewrite func(sql string, target dialect.Dialect) string
	Warning *core.Warning // emitted once when the rewrite changed the text
}

func anyTarget(dialect.Dialect) bool { return true }

func notOracle(d dialect.Dialect) bool { return d != dialect.Oracle }

func notMySQL(d dialect.Dialect) bool { return d != dialect.MySQL }

func notPostgres(d dialect.Dialect) bool { return d != dialect.Postgres }

func stripRule(re *regexp.Regexp) func(string, dialect.Dialect) string {
	return func(sql string, _ dialect.Dialect) string {
		return pattern.ReplaceAllOutside(sql, re, "")
	}
}

var (
	reSQLPlusSlash    = regexp.MustCompile(`(?m)^\s*/\s*$\n?`)
	reTablespace      = regexp.MustCompile(`(?i)\s+TABLESPACE\s+"?\w+"?`)
	reStorage         = regexp.MustCompile(`(?i)\s+STORAGE\s*\([^)]*\)`)
	rePctAttrs        = regexp.MustCompile(`(?i)\s+(?:PCTFREE|PCTUSED|INITRANS|MAXTRANS)\s+\d+`)
	reLogging         = regexp.MustCompile(`(?i)\s+(?:NO)?LOGGING\b`)
	reCompress        = regexp.MustCompile(`(?i)\s+(?:NOCOMPRESS|COMPRESS(?:\s+\d+)?)\b`)
	reCache           = regexp.MustCompile(`(?i)\s+(?:NO)?CACHE(?:\s+\d+)?\b`)
	reParallel        = regexp.MustCompile(`(?i)\s+(?:NO)?PARALLEL(?:\s+\d+)?\b`)
	reSegmentCreation = regexp.MustCompile(`(?i)\s+SEGMENT\s+CREATION\s+(?:IMMEDIATE|DEFERRED)`)
	reRowMovement     = regexp.MustCompile(`(?i)\s+(?:ENABLE|DISABLE)\s+ROW\s+MOVEMENT`)
	reLobFile         = regexp.MustCompile(`(?i)\s+(?:SECUREFILE|BASICFILE)\b`)
	reLobStore        = regexp.MustCompile(`(?i)\s+LOB\s*\([^)]*\)\s+STORE\s+AS\s+\w*\s*(?:\([^)]*\))?`)
	reIndexScope      = regexp.MustCompile(`(?i)(CREATE\s+(?:UNIQUE\s+)?INDEX[^;]*?)\s+(?:LOCAL|GLOBAL)\b`)
	reOrganization    = regexp.MustCompile(`(?i)\s+ORGANIZATION\s+(?:INDEX|HEAP)`)
	reMonitoring      = regexp.MustCompile(`(?i)\s+(?:NO)?MONITORING\b`)
	reBufferPool      = regexp.MustCompile(`(?i)\s+BUFFER_POOL\s+\w+`)
	reOracleHint      = regexp.MustCompile(`/\*\+[^*]*(?:\*+[^/*][^*]*)*\*+/`)
	reEngineOption    = regexp.MustCompile(`(?i)\s*(?:ENGINE|AUTO_INCREMENT|ROW_FORMAT|KEY_BLOCK_SIZE)\s*=\s*\w+`)
	reCharsetOption   = regexp.MustCompile(`(?i)\s*(?:DEFAULT\s+)?(?:CHARSET|CHARACTER\s+SET|COLLATE)\s*=?\s*\w+`)
	reFillfactor      = regexp.MustCompile(`(?i)\s+WITH\s*\(\s*FILLFACTOR\s*=\s*\d+\s*\)`)
	reDefaultSysdate  = regexp.MustCompile(`(?i)\bDEFAULT\s+SYSDATE\b`)
	reFromDual        = regexp.MustCompile(`(?i)\s+FROM\s+"?DUAL"?\b`)
	reBacktick        = regexp.MustCompile("`([^`]*)`")
	reSysSchemaPrefix = regexp.MustCompile(`(?i)\b(?:SYS|SYSTEM)\.(DBMS_|UTL_)`)
)

// pipeline is the fixed processor order. Storage-attribute strips come
// first, option rewrites second, schema-prefix normalization last.
var pipeline = []Processor{
	{
		Name:    "strip-sqlplus-terminator",
		Applies: notOracle,
		Rewrite: func(sql string, _ dialect.Dialect) string {
			return reSQLPlusSlash.ReplaceAllString(sql, "")
		},
	},
	{
		Name:    "strip-tablespace",
		Applies: notOracle,
		Rewrite: stripRule(reTablespace),
		Warning: &core.Warning{
			Kind:     core.WarnSyntaxDifference,
			Severity: core.SeverityInfo,
			Message:  "TABLESPACE clause removed; storage placement must be configured on the target",
		},
	},
	{
		Name:    "strip-storage-clause",
		Applies: notOracle,
		Rewrite: stripRule(reStorage),
	},
	{
		Name:    "strip-pct-attributes",
		Applies: notOracle,
		Rewrite: stripRule(rePctAttrs),
	},
	{
		Name:    "strip-logging",
		Applies: notOracle,
		Rewrite: stripRule(reLogging),
	},
	{
		Name:    "strip-compress",
		Applies: notOracle,
		Rewrite: stripRule(reCompress),
		Warning: &core.Warning{
			Kind:     core.WarnSyntaxDifference,
			Severity: core.SeverityInfo,
			Message:  "COMPRESS attribute removed; target-side compression must be configured separately",
		},
	},
	{
		Name:    "strip-cache",
		Applies: func(d dialect.Dialect) bool { return d == dialect.MySQL },
		Rewrite: stripRule(reCache),
	},
	{
		Name:    "strip-parallel",
		Applies: notOracle,
		Rewrite: stripRule(reParallel),
	},
	{
		Name:    "strip-segment-creation",
		Applies: notOracle,
		Rewrite: stripRule(reSegmentCreation),
	},
	{
		Name:    "strip-row-movement",
		Applies: notOracle,
		Rewrite: stripRule(reRowMovement),
	},
	{
		Name:    "strip-lob-file-kind",
		Applies: notOracle,
		Rewrite: stripRule(reLobFile),
	},
	{
		Name:    "strip-lob-storage",
		Applies: notOracle,
		Rewrite: stripRule(reLobStore),
		Warning: &core.Warning{
			Kind:     core.WarnManualReview,
			Severity: core.SeverityWarning,
			Message:  "LOB storage clause removed; verify large-object handling on the target",
		},
	},
	{
		Name:    "strip-index-scope",
		Applies: notOracle,
		Rewrite: func(sql string, _ dialect.Dialect) string {
			return pattern.ReplaceAllOutside(sql, reIndexScope, "$1")
		},
		Warning: &core.Warning{
			Kind:     core.WarnSyntaxDifference,
			Severity: core.SeverityInfo,
			Message:  "LOCAL/GLOBAL index qualifier removed; partitioned index scope is Oracle-only",
		},
	},
	{
		Name:    "strip-organization",
		Applies: notOracle,
		Rewrite: stripRule(reOrganization),
	},
	{
		Name:    "strip-monitoring",
		Applies: notOracle,
		Rewrite: stripRule(reMonitoring),
	},
	{
		Name:    "strip-buffer-pool",
		Applies: notOracle,
		Rewrite: stripRule(reBufferPool),
	},
	{
		// Optimizer hints are comments, so this one matches with comments
		// left visible and only string literals masked.
		Name:    "strip-optimizer-hints",
		Applies: notOracle,
		Rewrite: func(sql string, _ dialect.Dialect) string {
			return pattern.ReplaceAllStringsMasked(sql, reOracleHint, "")
		},
		Warning: &core.Warning{
			Kind:     core.WarnSyntaxDifference,
			Severity: core.SeverityInfo,
			Message:  "optimizer hints removed; target uses its own plan management",
		},
	},
	{
		Name:    "strip-mysql-table-options",
		Applies: notMySQL,
		Rewrite: func(sql string, _ dialect.Dialect) string {
			sql = pattern.ReplaceAllOutside(sql, reEngineOption, "")
			return pattern.ReplaceAllOutside(sql, reCharsetOption, "")
		},
	},
	{
		Name:    "backtick-to-ansi-quotes",
		Applies: notMySQL,
		Rewrite: func(sql string, _ dialect.Dialect) string {
			return reBacktick.ReplaceAllString(sql, `"$1"`)
		},
	},
	{
		Name:    "strip-fillfactor",
		Applies: notPostgres,
		Rewrite: stripRule(reFillfactor),
	},
	{
		Name:    "rewrite-default-sysdate",
		Applies: notOracle,
		Rewrite: func(sql string, target dialect.Dialect) string {
			return pattern.ReplaceAllOutside(sql, reDefaultSysdate, "DEFAULT "+target.NowExpr())
		},
	},
	{
		Name:    "strip-from-dual",
		Applies: notOracle,
		Rewrite: stripRule(reFromDual),
	},
	{
		// Must stay last: earlier strips may expose package references that
		// still carry an explicit SYS prefix.
		Name:    "strip-sys-schema-prefix",
		Applies: notOracle,
		Rewrite: func(sql string, _ dialect.Dialect) string {
			return pattern.ReplaceAllOutside(sql, reSysSchemaPrefix, "$1")
		},
	},
}

// Run executes the pipeline against sql for the given target dialect,
// recording an applied rule for every processor that changed the text.
func Run(sql string, target dialect.Dialect, acc *core.Accumulator) string {
	for _, p := range pipeline {
		if p.Applies != nil && !p.Applies(target) {
			continue
		}
		out := p.Rewrite(sql, target)
		if out == sql {
			continue
		}
		acc.Rule("preprocess: %s", p.Name)
		if p.Warning != nil {
			acc.Warn(*p.Warning)
		}
		sql = out
	}
	return sql
}

// StripPhysicalAttributes removes Oracle physical storage syntax without
// touching anything else. The recovery service uses it as its highest
// confidence strategy.
func StripPhysicalAttributes(sql string) string {
	for _, re := range []*regexp.Regexp{
		reTablespace, reStorage, rePctAttrs, reLogging, reCompress,
		reSegmentCreation, reRowMovement, reLobFile, reLobStore,
		reOrganization, reMonitoring, reBufferPool,
	} {
		sql = pattern.ReplaceAllOutside(sql, re, "")
	}
	return sql
}

// HasPhysicalAttributes reports whether sql carries any of the storage
// syntax StripPhysicalAttributes removes.
func HasPhysicalAttributes(sql string) bool {
	upper := pattern.Mask(strings.ToUpper(sql))
	for _, kw := range []string{"TABLESPACE", "PCTFREE", "PCTUSED", "INITRANS",
		"STORAGE", "SEGMENT CREATION", "BUFFER_POOL", "SECUREFILE", "BASICFILE"} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
