package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reMergeGate = regexp.MustCompile(`(?i)\b(MERGE\s+INTO|ON\s+CONFLICT|ON\s+DUPLICATE\s+KEY|INSERT\s+IGNORE|REPLACE\s+INTO)\b`)

	reMergeInto    = regexp.MustCompile(`(?i)\bMERGE\s+INTO\b`)
	reMergeDelete  = regexp.MustCompile(`(?i)\bWHEN\s+MATCHED\s+THEN\s+DELETE\b|\bDELETE\s+WHERE\b`)
	reConflictNone = regexp.MustCompile(`(?i)\bINSERT\s+INTO\b([^;]*?)\s+ON\s+CONFLICT(?:\s*\([^)]*\))?\s+DO\s+NOTHING`)
	reConflictUpd  = regexp.MustCompile(`(?i)\s+ON\s+CONFLICT\s*\([^)]*\)\s+DO\s+UPDATE\s+SET\s+`)
	reExcludedRef  = regexp.MustCompile(`(?i)\bEXCLUDED\.(\w+)`)
	reInsertIgnore = regexp.MustCompile(`(?is)\bINSERT\s+IGNORE\s+(?:INTO\s+)?(.*?)\s*(;|$)`)
	reReplaceInto  = regexp.MustCompile(`(?i)\bREPLACE\s+INTO\b`)
	reDupKeyUpd    = regexp.MustCompile(`(?i)\s+ON\s+DUPLICATE\s+KEY\s+UPDATE\s+`)

	// reSimpleMerge captures the canonical single-row upsert shape:
	// MERGE INTO t USING (SELECT ... FROM dual) s ON (...) with update and
	// insert branches. Anything richer is reported, not guessed at.
	reSimpleMerge = regexp.MustCompile(`(?is)\bMERGE\s+INTO\s+(\S+)(?:\s+(\w+))?\s+USING\s*\(\s*(SELECT\s.*?FROM\s+DUAL)\s*\)\s*(\w+)\s+ON\s*\(\s*(.+?)\s*\)\s*` +
		`WHEN\s+MATCHED\s+THEN\s+UPDATE\s+SET\s+(.+?)\s*` +
		`WHEN\s+NOT\s+MATCHED\s+THEN\s+INSERT\s*\(([^)]+)\)\s*VALUES\s*\(([^)]+)\)\s*(;|$)`)
)

// mergeConverter translates the three upsert families into each other:
// MERGE (Oracle), INSERT ... ON CONFLICT (PostgreSQL), and INSERT ... ON
// DUPLICATE KEY UPDATE / INSERT IGNORE (MySQL). Only the canonical
// single-row MERGE shape is rewritten mechanically; a MERGE with a DELETE
// branch changes row lifetimes and is never attempted.
var mergeConverter = Converter{
	Name:   "merge-upsert",
	Family: FamilySyntax,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reMergeGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		switch src {
		case dialect.Oracle:
			if tgt != dialect.Oracle {
				sql = mergeFromOracle(sql, tgt, acc)
			}
		case dialect.Postgres:
			if tgt == dialect.MySQL {
				sql = conflictToMySQL(sql, acc)
			} else if tgt == dialect.Oracle && pattern.MatchesOutside(sql, reConflictUpd) {
				acc.Warnf(core.WarnManualReview, core.SeverityWarning,
					"INSERT ... ON CONFLICT DO UPDATE should be rewritten as a MERGE statement")
			}
		case dialect.MySQL:
			if tgt != dialect.MySQL {
				sql = upsertFromMySQL(sql, tgt, acc)
			}
		}
		return sql
	},
}

func mergeFromOracle(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	if pattern.MatchesOutside(sql, reMergeDelete) {
		acc.Warn(core.Warning{
			Kind:       core.WarnPartialSupport,
			Severity:   core.SeverityError,
			Message:    "MERGE with a DELETE branch removes matched rows and has no upsert equivalent; the statement was left unchanged",
			Suggestion: "split the statement into an upsert and a separate DELETE",
		})
		return sql
	}
	out := pattern.ReplaceAllFuncOutside(sql, reSimpleMerge, func(match string) string {
		m := reSimpleMerge.FindStringSubmatch(match)
		table, srcSelect, srcAlias := m[1], m[3], m[4]
		onCond, setList, cols, vals, term := m[5], m[6], m[7], m[8], m[9]

		values, ok := selectFromDualValues(srcSelect, srcAlias, vals)
		if !ok {
			return match
		}
		key, ok := mergeKeyColumn(onCond)
		if !ok {
			return match
		}
		set := strings.TrimSpace(setList)
		// Strip target-alias prefixes so the SET list is valid on a plain
		// INSERT. Source-alias references become target-value references.
		set = regexp.MustCompile(`(?i)\b\w+\.(\w+)\s*=`).ReplaceAllString(set, "$1 =")

		switch tgt {
		case dialect.Postgres:
			set = regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(srcAlias)+`\.(\w+)`).ReplaceAllString(set, "EXCLUDED.$1")
			acc.Rule("merge: MERGE INTO %s -> INSERT ON CONFLICT", table)
			return "INSERT INTO " + table + " (" + strings.TrimSpace(cols) + ") VALUES (" + values + ")" +
				" ON CONFLICT (" + key + ") DO UPDATE SET " + set + term
		case dialect.MySQL:
			set = regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(srcAlias)+`\.(\w+)`).ReplaceAllString(set, "VALUES($1)")
			acc.Rule("merge: MERGE INTO %s -> INSERT ON DUPLICATE KEY UPDATE", table)
			acc.Warnf(core.WarnSyntaxDifference, core.SeverityInfo,
				"ON DUPLICATE KEY UPDATE fires on any unique key of %s, not only on %s", table, key)
			return "INSERT INTO " + table + " (" + strings.TrimSpace(cols) + ") VALUES (" + values + ")" +
				" ON DUPLICATE KEY UPDATE " + set + term
		}
		return match
	})
	if out != sql {
		return out
	}
	if pattern.MatchesOutside(sql, reMergeInto) {
		acc.Warnf(core.WarnManualReview, core.SeverityError,
			"MERGE statement is too complex for automatic rewriting; restructure it as an upsert by hand")
	}
	return sql
}

// selectFromDualValues extracts the literal value list from a
// `SELECT a AS x, b AS y FROM dual` source and maps the insert VALUES
// references back onto it. Returns false when the insert list references
// anything but the dual-select aliases.
func selectFromDualValues(srcSelect, srcAlias, vals string) (string, bool) {
	body := regexp.MustCompile(`(?is)^SELECT\s+(.*?)\s+FROM\s+DUAL$`).FindStringSubmatch(strings.TrimSpace(srcSelect))
	if body == nil {
		return "", false
	}
	byAlias := make(map[string]string)
	for _, item := range pattern.SplitArgs(body[1]) {
		m := regexp.MustCompile(`(?is)^(.*?)\s+(?:AS\s+)?(\w+)$`).FindStringSubmatch(strings.TrimSpace(item))
		if m == nil {
			return "", false
		}
		byAlias[strings.ToUpper(m[2])] = strings.TrimSpace(m[1])
	}
	var out []string
	for _, v := range pattern.SplitArgs(vals) {
		m := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(srcAlias) + `\.(\w+)$`).FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			return "", false
		}
		val, ok := byAlias[strings.ToUpper(m[1])]
		if !ok {
			return "", false
		}
		out = append(out, val)
	}
	return strings.Join(out, ", "), true
}

// mergeKeyColumn reads the conflict column out of a single-equality ON
// condition.
func mergeKeyColumn(cond string) (string, bool) {
	m := regexp.MustCompile(`(?i)^\s*\w+\.(\w+)\s*=\s*\w+\.\w+\s*$`).FindStringSubmatch(cond)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func conflictToMySQL(sql string, acc *core.Accumulator) string {
	out := pattern.ReplaceAllFuncOutside(sql, reConflictNone, func(match string) string {
		m := reConflictNone.FindStringSubmatch(match)
		acc.Rule("merge: ON CONFLICT DO NOTHING -> INSERT IGNORE")
		return "INSERT IGNORE INTO" + m[1]
	})
	if out != sql {
		sql = out
	}
	if pattern.MatchesOutside(sql, reConflictUpd) {
		out = pattern.ReplaceAllOutside(sql, reConflictUpd, " ON DUPLICATE KEY UPDATE ")
		out = pattern.ReplaceAllOutside(out, reExcludedRef, "VALUES($1)")
		if out != sql {
			acc.Rule("merge: ON CONFLICT DO UPDATE -> ON DUPLICATE KEY UPDATE")
			acc.Warnf(core.WarnSyntaxDifference, core.SeverityWarning,
				"ON DUPLICATE KEY UPDATE fires on any unique key, not only on the original conflict target")
			sql = out
		}
	}
	return sql
}

func upsertFromMySQL(sql string, tgt dialect.Dialect, acc *core.Accumulator) string {
	if tgt == dialect.Postgres {
		sql = pattern.ReplaceAllFuncOutside(sql, reInsertIgnore, func(match string) string {
			m := reInsertIgnore.FindStringSubmatch(match)
			acc.Rule("merge: INSERT IGNORE -> ON CONFLICT DO NOTHING")
			return "INSERT INTO " + m[1] + " ON CONFLICT DO NOTHING" + m[2]
		})
		if pattern.MatchesOutside(sql, reDupKeyUpd) {
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"ON DUPLICATE KEY UPDATE needs an explicit conflict target on the target system; rewrite as INSERT ... ON CONFLICT (key) DO UPDATE")
		}
	} else {
		if pattern.MatchesOutside(sql, reInsertIgnore) {
			acc.Warnf(core.WarnManualReview, core.SeverityWarning,
				"INSERT IGNORE silently skips conflicting rows; rewrite as a MERGE that only inserts unmatched rows")
		}
		if pattern.MatchesOutside(sql, reDupKeyUpd) {
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"ON DUPLICATE KEY UPDATE should be rewritten as a MERGE statement")
		}
	}
	if pattern.MatchesOutside(sql, reReplaceInto) {
		acc.Warn(core.Warning{
			Kind:       core.WarnManualReview,
			Severity:   core.SeverityError,
			Message:    "REPLACE INTO deletes the existing row before inserting, which fires delete triggers and breaks foreign keys",
			Suggestion: "rewrite as an upsert that updates in place",
		})
	}
	return sql
}
