package feature

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reSynonymGate   = regexp.MustCompile(`(?i)\bSYNONYM\b`)
	reCreateSynonym = regexp.MustCompile(`(?i)\bCREATE\s+(?:OR\s+REPLACE\s+)?(?:PUBLIC\s+)?SYNONYM\s+(\S+)\s+FOR\s+(\S+?)\s*(;|$)`)
	reDropSynonym   = regexp.MustCompile(`(?i)\bDROP\s+(?:PUBLIC\s+)?SYNONYM\s+(\S+)\s*(;|$)`)
)

// synonymConverter rewrites Oracle synonyms as view wrappers on targets
// without synonym support. A synonym pointing across a database link cannot
// be emulated safely and becomes an explicit manual-migration stub.
var synonymConverter = Converter{
	Name:   "synonyms",
	Family: FamilyDDL,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reSynonymGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		if tgt == dialect.Oracle {
			return sql
		}
		sql = pattern.ReplaceAllFuncOutside(sql, reCreateSynonym, func(match string) string {
			m := reCreateSynonym.FindStringSubmatch(match)
			name, target, term := m[1], m[2], m[3]
			if strings.Contains(target, "@") {
				acc.Rule("synonym: %s stubbed (database link)", name)
				acc.Warnf(core.WarnManualReview, core.SeverityError,
					"synonym %s points at %s across a database link and cannot be emulated; migrate the remote object manually", name, target)
				return "-- MANUAL MIGRATION REQUIRED: " + strings.TrimSuffix(match, term)
			}
			acc.Rule("synonym: %s -> view wrapper", name)
			acc.Warnf(core.WarnSyntaxDifference, core.SeverityWarning,
				"synonym %s emulated as a view; DML through it depends on target updatable-view rules", name)
			return "CREATE OR REPLACE VIEW " + name + " AS SELECT * FROM " + target + term
		})
		return pattern.ReplaceAllFuncOutside(sql, reDropSynonym, func(match string) string {
			m := reDropSynonym.FindStringSubmatch(match)
			acc.Rule("synonym: drop %s -> drop view", m[1])
			return "DROP VIEW " + m[1] + m[2]
		})
	},
}
