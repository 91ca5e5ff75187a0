package feature

import (
	"regexp"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reIndexGate    = regexp.MustCompile(`(?i)\b(CREATE|DROP|ALTER)\s+(UNIQUE\s+)?(BITMAP\s+)?INDEX\b`)
	reBitmapIndex  = regexp.MustCompile(`(?i)\bCREATE\s+BITMAP\s+INDEX\b`)
	reReverseIdx   = regexp.MustCompile(`(?i)\s+\bREVERSE\b`)
	reUsingBtree   = regexp.MustCompile(`(?i)\s+USING\s+(BTREE|HASH)\b`)
	reUsingGin     = regexp.MustCompile(`(?i)\s+USING\s+(GIN|GIST|BRIN|SPGIST)\b`)
	reConcurrently = regexp.MustCompile(`(?i)\bCREATE\s+(UNIQUE\s+)?INDEX\s+CONCURRENTLY\b`)
	rePartialIndex = regexp.MustCompile(`(?i)\bCREATE\s+(?:UNIQUE\s+)?INDEX\s+[^;]*\)\s*WHERE\b`)
	reIdxLocalGlob = regexp.MustCompile(`(?i)\s+\b(LOCAL|GLOBAL)\b\s*(;|$)`)
)

// indexConverter normalizes index DDL. Vendor-specific access methods that
// have no counterpart degrade to a plain index with a warning rather than
// failing the statement.
var indexConverter = Converter{
	Name:   "indexes",
	Family: FamilyDDL,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reIndexGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		if src == dialect.Oracle && tgt != dialect.Oracle {
			out := pattern.ReplaceAllOutside(sql, reBitmapIndex, "CREATE INDEX")
			if out != sql {
				acc.Rule("index: BITMAP index -> plain index")
				acc.Warnf(core.WarnUnsupportedFunction, core.SeverityWarning,
					"BITMAP indexes are not supported; a plain B-tree index was created instead and may perform differently on low-cardinality columns")
				sql = out
			}
			sql = rewriteRule(sql, reReverseIdx, "", "index: REVERSE removed", acc)
			out = pattern.ReplaceAllOutside(sql, reIdxLocalGlob, "$2")
			if out != sql {
				acc.Rule("index: partitioning scope removed")
				acc.Warnf(core.WarnManualReview, core.SeverityWarning,
					"LOCAL/GLOBAL index partitioning was removed; recreate partitioned indexes on the target explicitly")
				sql = out
			}
		}
		if src == dialect.MySQL && tgt != dialect.MySQL {
			sql = rewriteRule(sql, reUsingBtree, "", "index: USING clause removed", acc)
		}
		if src == dialect.Postgres && tgt != dialect.Postgres {
			out := pattern.ReplaceAllOutside(sql, reUsingGin, "")
			if out != sql {
				acc.Rule("index: access method removed")
				acc.Warnf(core.WarnUnsupportedFunction, core.SeverityWarning,
					"GIN/GiST-style index access methods are not available; a plain index was created instead")
				sql = out
			}
			out = pattern.ReplaceAllOutside(sql, reConcurrently, "CREATE ${1}INDEX")
			if out != sql {
				acc.Rule("index: CONCURRENTLY removed")
				sql = out
			}
			if tgt == dialect.MySQL && pattern.MatchesOutside(sql, rePartialIndex) {
				acc.Warnf(core.WarnPartialSupport, core.SeverityError,
					"partial index WHERE clause is not supported; the predicate must be enforced by the application or a generated column")
			}
		}
		return sql
	},
}
