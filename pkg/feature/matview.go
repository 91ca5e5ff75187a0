package feature

import (
	"regexp"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reMatviewGate    = regexp.MustCompile(`(?i)\bMATERIALIZED\s+VIEW\b`)
	reCreateMatview  = regexp.MustCompile(`(?i)\bCREATE\s+MATERIALIZED\s+VIEW\b`)
	reBuildDeferred  = regexp.MustCompile(`(?i)\s+BUILD\s+DEFERRED\b`)
	reBuildImmediate = regexp.MustCompile(`(?i)\s+BUILD\s+IMMEDIATE\b`)
	reRefreshClause  = regexp.MustCompile(`(?i)\s+REFRESH\s+(FAST|COMPLETE|FORCE)(\s+ON\s+(COMMIT|DEMAND))?`)
	reOnCommit       = regexp.MustCompile(`(?i)\bON\s+COMMIT\b`)
	reWithNoData     = regexp.MustCompile(`(?i)\s+WITH\s+NO\s+DATA\b`)
	reWithData       = regexp.MustCompile(`(?i)\s+WITH\s+DATA\b`)
	reRefreshStmt    = regexp.MustCompile(`(?i)\bREFRESH\s+MATERIALIZED\s+VIEW\s+(?:CONCURRENTLY\s+)?(\S+?)\s*(;|$)`)
	reDeferredStmt   = regexp.MustCompile(`(?is)\b(CREATE\s+MATERIALIZED\s+VIEW\b[^;]*?)\s+BUILD\s+DEFERRED\b([^;]*?)\s*(;|$)`)
)

// materializedViewConverter translates materialized views. Oracle and
// PostgreSQL both have them with different refresh models; MySQL has none,
// so a view headed there becomes a plain table whose refresh must be
// scheduled externally.
var materializedViewConverter = Converter{
	Name:   "materialized-views",
	Family: FamilyDDL,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reMatviewGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		switch tgt {
		case dialect.MySQL:
			out := pattern.ReplaceAllOutside(sql, reCreateMatview, "CREATE TABLE")
			if out != sql {
				acc.Rule("materialized-view: rewritten as plain table")
				acc.Warn(core.Warning{
					Kind:       core.WarnPartialSupport,
					Severity:   core.SeverityWarning,
					Message:    "materialized views are not supported; the view was rewritten as a plain table that will not refresh itself",
					Suggestion: "schedule a periodic job that truncates and repopulates the table",
				})
				sql = out
			}
			sql = dropMatviewOptions(sql, acc)
			sql = pattern.ReplaceAllFuncOutside(sql, reRefreshStmt, func(match string) string {
				m := reRefreshStmt.FindStringSubmatch(match)
				acc.Rule("materialized-view: REFRESH %s stubbed", m[1])
				acc.Warnf(core.WarnManualReview, core.SeverityWarning,
					"REFRESH of %s must repopulate the replacement table instead", m[1])
				return "-- MANUAL MIGRATION REQUIRED: " + match
			})
		case dialect.Postgres:
			if pattern.MatchesOutside(sql, reOnCommit) && pattern.MatchesOutside(sql, reCreateMatview) {
				acc.Warnf(core.WarnPartialSupport, core.SeverityWarning,
					"REFRESH ON COMMIT has no equivalent; the view must be refreshed explicitly or from a trigger")
			}
			// WITH NO DATA trails the whole statement, unlike BUILD DEFERRED.
			sql = rewriteRule(sql, reDeferredStmt, "$1$2 WITH NO DATA$3", "materialized-view: BUILD DEFERRED -> WITH NO DATA", acc)
			sql = rewriteRule(sql, reBuildImmediate, "", "materialized-view: BUILD IMMEDIATE removed", acc)
			sql = rewriteRule(sql, reRefreshClause, "", "materialized-view: Oracle refresh clause removed", acc)
		case dialect.Oracle:
			sql = rewriteRule(sql, reWithNoData, " BUILD DEFERRED", "materialized-view: WITH NO DATA -> BUILD DEFERRED", acc)
			sql = rewriteRule(sql, reWithData, "", "materialized-view: WITH DATA removed", acc)
			sql = pattern.ReplaceAllFuncOutside(sql, reRefreshStmt, func(match string) string {
				m := reRefreshStmt.FindStringSubmatch(match)
				acc.Rule("materialized-view: REFRESH -> DBMS_MVIEW.REFRESH")
				return "BEGIN DBMS_MVIEW.REFRESH('" + m[1] + "'); END;"
			})
		}
		return sql
	},
}

func dropMatviewOptions(sql string, acc *core.Accumulator) string {
	sql = rewriteRule(sql, reBuildDeferred, "", "materialized-view: build option removed", acc)
	sql = rewriteRule(sql, reBuildImmediate, "", "materialized-view: build option removed", acc)
	sql = rewriteRule(sql, reRefreshClause, "", "materialized-view: refresh clause removed", acc)
	sql = rewriteRule(sql, reWithNoData, "", "materialized-view: WITH NO DATA removed", acc)
	sql = rewriteRule(sql, reWithData, "", "materialized-view: WITH DATA removed", acc)
	return sql
}
