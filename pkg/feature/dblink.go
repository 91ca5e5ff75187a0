package feature

import (
	"regexp"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

var (
	reDbLinkGate   = regexp.MustCompile(`(?i)(\w+@\w+|DATABASE\s+LINK)`)
	reCreateDbLink = regexp.MustCompile(`(?im)^.*CREATE\s+(?:PUBLIC\s+)?DATABASE\s+LINK\b.*$`)
	reLinkRef      = regexp.MustCompile(`(?i)\b([A-Za-z_][\w$#]*)@([A-Za-z_][\w$#.]*)`)
)

// dbLinkConverter handles Oracle database links. Links have no analog on
// the other targets: link definitions are commented out, and remote object
// references lose their @link suffix with a manual-review warning naming
// the link.
var dbLinkConverter = Converter{
	Name:   "database-links",
	Family: FamilyDDL,
	Applies: func(sql string) bool {
		return pattern.MatchesOutside(sql, reDbLinkGate)
	},
	Convert: func(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
		if src != dialect.Oracle || tgt == dialect.Oracle {
			return sql
		}
		sql = pattern.ReplaceAllFuncOutside(sql, reCreateDbLink, func(match string) string {
			acc.Rule("database-link: definition commented out")
			acc.Warnf(core.WarnManualReview, core.SeverityError,
				"CREATE DATABASE LINK has no equivalent; configure foreign-data access on the target instead")
			return "-- MANUAL MIGRATION REQUIRED: " + match
		})
		return pattern.ReplaceAllFuncOutside(sql, reLinkRef, func(match string) string {
			m := reLinkRef.FindStringSubmatch(match)
			acc.Rule("database-link: %s dereferenced", match)
			acc.Warnf(core.WarnManualReview, core.SeverityWarning,
				"reference to %s crossed database link %s; the object is now addressed locally", m[1], m[2])
			return m[1]
		})
	},
}
