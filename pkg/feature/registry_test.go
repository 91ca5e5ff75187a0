package feature

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterOrderIsFixed(t *testing.T) {
	var names []string
	for _, c := range Converters() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"synonyms",
		"database-links",
		"package-calls",
		"sequences",
		"user-types",
		"indexes",
		"materialized-views",
		"merge-upsert",
		"pivot-unpivot",
		"recursive-cte",
		"window-extensions",
		"date-arithmetic",
	}, names)
}

func TestConverterPanicIsIsolated(t *testing.T) {
	var acc core.Accumulator
	c := Converter{
		Name: "exploding",
		Convert: func(string, dialect.Dialect, dialect.Dialect, *core.Accumulator) string {
			panic("boom")
		},
	}
	out := runOne(c, "SELECT 1", dialect.Oracle, dialect.MySQL, &acc)
	assert.Equal(t, "SELECT 1", out)
	require.Len(t, acc.Warnings, 1)
	assert.Equal(t, core.SeverityError, acc.Warnings[0].Severity)
	assert.Contains(t, acc.Warnings[0].Message, "exploding")
}

func TestFamilyGating(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.DDL = false
	var acc core.Accumulator
	sql := "CREATE BITMAP INDEX idx ON t(c)"
	got := Run(sql, dialect.Oracle, dialect.MySQL, cfg, &acc)
	assert.Equal(t, sql, got)
	assert.Empty(t, acc.Rules)
}

func TestBitmapIndexDegrades(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE BITMAP INDEX idx_status ON orders(status)",
		dialect.Oracle, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t, "CREATE INDEX idx_status ON orders(status)", got)
	require.NotEmpty(t, acc.Warnings)
	assert.Contains(t, acc.Warnings[0].Message, "BITMAP")
}

func TestOnConflictDoNothingToInsertIgnore(t *testing.T) {
	var acc core.Accumulator
	got := Run("INSERT INTO t (id) VALUES (1) ON CONFLICT DO NOTHING",
		dialect.Postgres, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t, "INSERT IGNORE INTO t (id) VALUES (1)", got)
}

func TestMergeDeleteBranchIsNeverAttempted(t *testing.T) {
	sql := `MERGE INTO inv t USING src s ON (t.id = s.id)
WHEN MATCHED THEN UPDATE SET qty = s.qty
DELETE WHERE s.qty = 0`
	var acc core.Accumulator
	got := Run(sql, dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t, sql, got)
	var found bool
	for _, w := range acc.Warnings {
		if w.Kind == core.WarnPartialSupport && strings.Contains(w.Message, "DELETE") {
			found = true
		}
	}
	assert.True(t, found, "expected a partial-support warning naming the DELETE branch")
}

func TestSimpleMergeToOnConflict(t *testing.T) {
	sql := "MERGE INTO users u USING (SELECT 1 AS id, 'Ann' AS name FROM dual) s " +
		"ON (u.id = s.id) " +
		"WHEN MATCHED THEN UPDATE SET name = s.name " +
		"WHEN NOT MATCHED THEN INSERT (id, name) VALUES (s.id, s.name);"
	var acc core.Accumulator
	got := Run(sql, dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t,
		"INSERT INTO users (id, name) VALUES (1, 'Ann') ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;",
		got)
}

func TestSimpleMergeToDuplicateKey(t *testing.T) {
	sql := "MERGE INTO users u USING (SELECT 1 AS id, 'Ann' AS name FROM dual) s " +
		"ON (u.id = s.id) " +
		"WHEN MATCHED THEN UPDATE SET name = s.name " +
		"WHEN NOT MATCHED THEN INSERT (id, name) VALUES (s.id, s.name);"
	var acc core.Accumulator
	got := Run(sql, dialect.Oracle, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t,
		"INSERT INTO users (id, name) VALUES (1, 'Ann') ON DUPLICATE KEY UPDATE name = VALUES(name);",
		got)
}

func TestOnConflictUpdateToDuplicateKey(t *testing.T) {
	var acc core.Accumulator
	got := Run("INSERT INTO t (id, n) VALUES (1, 2) ON CONFLICT (id) DO UPDATE SET n = EXCLUDED.n",
		dialect.Postgres, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t, "INSERT INTO t (id, n) VALUES (1, 2) ON DUPLICATE KEY UPDATE n = VALUES(n)", got)
}

func TestSequenceNextvalToPostgres(t *testing.T) {
	var acc core.Accumulator
	got := Run("INSERT INTO t (id) VALUES (orders_seq.NEXTVAL)",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t, "INSERT INTO t (id) VALUES (NEXTVAL('orders_seq'))", got)
}

func TestSequenceNextvalToOracle(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT NEXTVAL('orders_seq')", dialect.Postgres, dialect.Oracle, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT orders_seq.NEXTVAL", got)
}

func TestSerialToAutoIncrement(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE TABLE t (id SERIAL PRIMARY KEY)",
		dialect.Postgres, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t, "CREATE TABLE t (id INT AUTO_INCREMENT PRIMARY KEY)", got)
}

func TestSequenceToMySQLWarns(t *testing.T) {
	var acc core.Accumulator
	Run("INSERT INTO t (id) VALUES (s.NEXTVAL)", dialect.Oracle, dialect.MySQL, core.DefaultConfig(), &acc)
	require.NotEmpty(t, acc.Warnings)
	assert.Equal(t, core.SeverityError, acc.Warnings[0].Severity)
}

func TestSynonymBecomesView(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE SYNONYM emp FOR hr.employees;",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t, "CREATE OR REPLACE VIEW emp AS SELECT * FROM hr.employees;", got)
}

func TestSynonymOverDbLinkIsStubbed(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE SYNONYM emp FOR employees@remote;",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Contains(t, got, "MANUAL MIGRATION REQUIRED")
	require.NotEmpty(t, acc.Warnings)
	assert.Equal(t, core.SeverityError, acc.Warnings[0].Severity)
}

func TestDbLinkReferenceIsLocalized(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT * FROM employees@hq_link",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT * FROM employees", got)
	require.NotEmpty(t, acc.Warnings)
	assert.Contains(t, acc.Warnings[0].Message, "hq_link")
}

func TestMaterializedViewToMySQLTable(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE MATERIALIZED VIEW mv_sales REFRESH COMPLETE ON DEMAND AS SELECT * FROM sales",
		dialect.Oracle, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t, "CREATE TABLE mv_sales AS SELECT * FROM sales", got)
	require.NotEmpty(t, acc.Warnings)
	assert.Equal(t, core.WarnPartialSupport, acc.Warnings[0].Kind)
}

func TestBuildDeferredToWithNoData(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE MATERIALIZED VIEW mv BUILD DEFERRED AS SELECT * FROM t",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Contains(t, got, "WITH NO DATA")
	assert.NotContains(t, got, "BUILD")
}

func TestListaggToGroupConcat(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT LISTAGG(name, ', ') WITHIN GROUP (ORDER BY name) FROM emp",
		dialect.Oracle, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT GROUP_CONCAT(name ORDER BY name SEPARATOR ', ') FROM emp", got)
}

func TestListaggToStringAgg(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT LISTAGG(name, ', ') WITHIN GROUP (ORDER BY name) FROM emp",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT STRING_AGG(name, ', ' ORDER BY name) FROM emp", got)
}

func TestGroupConcatToListagg(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT GROUP_CONCAT(name ORDER BY name SEPARATOR '; ') FROM emp",
		dialect.MySQL, dialect.Oracle, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT LISTAGG(name, '; ') WITHIN GROUP (ORDER BY name) FROM emp", got)
}

func TestIgnoreNullsIsDegraded(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT LAG(price IGNORE NULLS) OVER (ORDER BY ts) FROM quotes",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT LAG(price) OVER (ORDER BY ts) FROM quotes", got)
	require.NotEmpty(t, acc.Warnings)
	assert.Equal(t, core.WarnPartialSupport, acc.Warnings[0].Kind)
}

func TestRecursiveKeywordAdded(t *testing.T) {
	sql := "WITH tree (id, parent) AS (SELECT id, parent FROM nodes WHERE parent IS NULL " +
		"UNION ALL SELECT n.id, n.parent FROM nodes n JOIN tree t ON n.parent = t.id) SELECT * FROM tree"
	var acc core.Accumulator
	got := Run(sql, dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.True(t, strings.HasPrefix(got, "WITH RECURSIVE tree"))
}

func TestNonRecursiveCTEUntouched(t *testing.T) {
	sql := "WITH recent AS (SELECT * FROM orders WHERE ts > SYSDATE - 1) SELECT * FROM recent"
	var acc core.Accumulator
	got := Run(sql, dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.NotContains(t, got, "RECURSIVE")
}

func TestRecursiveKeywordRemovedForOracle(t *testing.T) {
	var acc core.Accumulator
	got := Run("WITH RECURSIVE tree (id) AS (SELECT 1) SELECT * FROM tree",
		dialect.Postgres, dialect.Oracle, core.DefaultConfig(), &acc)
	assert.True(t, strings.HasPrefix(got, "WITH tree"))
}

func TestUnpivotExpandsToUnionAll(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT * FROM quarterly UNPIVOT (amount FOR quarter IN (q1, q2))",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Contains(t, got, "UNION ALL")
	assert.Contains(t, got, "'Q1' AS quarter")
	assert.Contains(t, got, "q2 AS amount")
}

func TestPivotExpandsToConditionalAggregates(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT * FROM sales PIVOT (SUM(amount) FOR region IN ('EU' AS eu, 'US' AS us))",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Contains(t, got, "SUM(CASE WHEN region = 'EU' THEN amount END) AS eu")
	assert.Contains(t, got, "SUM(CASE WHEN region = 'US' THEN amount END) AS us")
	require.NotEmpty(t, acc.Warnings)
}

func TestDbmsRandomValue(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT DBMS_RANDOM.VALUE FROM dual",
		dialect.Oracle, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT RAND() FROM dual", got)
	assert.Contains(t, acc.Rules, "package-call: DBMS_RANDOM.VALUE -> RAND()")
}

func TestDbmsLobSubstrArgOrder(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT DBMS_LOB.SUBSTR(doc, 100, 1) FROM files",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT SUBSTRING(doc, 1, 100) FROM files", got)
}

func TestUnknownPackageRoutineWarns(t *testing.T) {
	var acc core.Accumulator
	Run("BEGIN DBMS_ALERT.SIGNAL('x', 'y'); END;",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	require.NotEmpty(t, acc.Warnings)
	assert.Contains(t, acc.Warnings[0].Message, "DBMS_ALERT.SIGNAL")
}

func TestSysdateOffsetToInterval(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT * FROM orders WHERE ts > SYSDATE - 7 ",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.Contains(t, got, "SYSDATE - INTERVAL '7 day'")
}

func TestDateAddToOracleArithmetic(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT DATE_ADD(created, INTERVAL 3 DAY) FROM t",
		dialect.MySQL, dialect.Oracle, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT (created + 3) FROM t", got)
}

func TestDateSubHoursToOracleFraction(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT DATE_SUB(created, INTERVAL 6 HOUR) FROM t",
		dialect.MySQL, dialect.Oracle, core.DefaultConfig(), &acc)
	assert.Equal(t, "SELECT (created - 6/24) FROM t", got)
}

func TestPgIntervalToDateAdd(t *testing.T) {
	var acc core.Accumulator
	got := Run("SELECT * FROM t WHERE ts > created + INTERVAL '7 days'",
		dialect.Postgres, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Contains(t, got, "DATE_ADD(created, INTERVAL 7 DAY)")
}

func TestObjectTypeToComposite(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE TYPE addr_t AS OBJECT (street VARCHAR2(100), city VARCHAR2(50));",
		dialect.Oracle, dialect.Postgres, core.DefaultConfig(), &acc)
	assert.True(t, strings.HasPrefix(got, "CREATE TYPE addr_t AS ("))
}

func TestObjectTypeToMySQLIsStubbed(t *testing.T) {
	var acc core.Accumulator
	got := Run("CREATE TYPE addr_t AS OBJECT (street VARCHAR2(100));",
		dialect.Oracle, dialect.MySQL, core.DefaultConfig(), &acc)
	assert.Contains(t, got, "MANUAL MIGRATION REQUIRED")
}

func TestLiteralsSurviveEveryConverter(t *testing.T) {
	sql := "INSERT INTO log (msg) VALUES ('CREATE BITMAP INDEX ON CONFLICT SYSDATE - 7 LISTAGG(')"
	for _, src := range dialect.All {
		for _, tgt := range dialect.All {
			if src == tgt {
				continue
			}
			var acc core.Accumulator
			got := Run(sql, src, tgt, core.DefaultConfig(), &acc)
			assert.Equal(t, sql, got, "%s -> %s", src, tgt)
		}
	}
}
