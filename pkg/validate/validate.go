// Package validate inspects a conversion result for structural damage and
// target-side performance smells. It never blocks a conversion; everything
// it finds is reported as a warning on the result.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

// Options tunes the structural and performance checks.
type Options struct {
	// MaxInListSize is the IN-list length above which a performance warning
	// is raised. Zero disables the check.
	MaxInListSize int
	// MaxSubqueryDepth is the nesting depth above which a performance
	// warning is raised. Zero disables the check.
	MaxSubqueryDepth int
}

// FromConfig derives validation options from a rule configuration.
func FromConfig(cfg core.RuleConfig) Options {
	return Options{
		MaxInListSize:    cfg.MaxInListSize,
		MaxSubqueryDepth: cfg.MaxSubqueryDepth,
	}
}

// criticalKeywords are clauses whose disappearance during conversion almost
// always means a rewrite ate part of the statement.
var criticalKeywords = []string{"WHERE", "GROUP BY", "ORDER BY", "HAVING", "DISTINCT"}

var (
	reFuncCall    = regexp.MustCompile(`(?i)\b\w+\s*\(`)
	reInList      = regexp.MustCompile(`(?i)\bIN\s*\(([^()]*)\)`)
	reLeadingWild = regexp.MustCompile(`(?i)\bLIKE\s+'%`)
	reSelectStar  = regexp.MustCompile(`(?i)\bSELECT\s+\*`)
)

// Check compares the converted text against the original and returns every
// finding. The original is the pre-conversion text of the same input, used
// as the baseline for loss detection.
func Check(original, converted string, opts Options) []core.Warning {
	var warns []core.Warning
	warns = append(warns, balanceChecks(converted)...)
	warns = append(warns, lossChecks(original, converted)...)
	warns = append(warns, performanceChecks(converted, opts)...)
	return warns
}

func balanceChecks(sql string) []core.Warning {
	var warns []core.Warning
	open := pattern.CountOutside(sql, '(')
	closed := pattern.CountOutside(sql, ')')
	if open != closed {
		warns = append(warns, core.Warning{
			Kind:     core.WarnManualReview,
			Severity: core.SeverityError,
			Message:  fmt.Sprintf("unbalanced parentheses in output: %d opening, %d closing", open, closed),
		})
	}
	if pattern.UnescapedQuoteCount(sql)%2 != 0 {
		warns = append(warns, core.Warning{
			Kind:     core.WarnManualReview,
			Severity: core.SeverityError,
			Message:  "unbalanced string quotes in output",
		})
	}
	return warns
}

func lossChecks(original, converted string) []core.Warning {
	var warns []core.Warning
	for _, kw := range criticalKeywords {
		re := keywordRegexp(kw)
		before := len(pattern.FindAllIndexOutside(original, re))
		after := len(pattern.FindAllIndexOutside(converted, re))
		if after < before {
			warns = append(warns, core.Warning{
				Kind:     core.WarnManualReview,
				Severity: core.SeverityError,
				Message:  fmt.Sprintf("%s appears %d time(s) in the input but %d in the output", kw, before, after),
			})
		}
	}
	before := len(pattern.FindAllIndexOutside(original, reFuncCall))
	after := len(pattern.FindAllIndexOutside(converted, reFuncCall))
	if before >= 2 && after*2 < before {
		warns = append(warns, core.Warning{
			Kind:     core.WarnManualReview,
			Severity: core.SeverityWarning,
			Message:  fmt.Sprintf("function calls dropped from %d to %d during conversion", before, after),
		})
	}
	return warns
}

func performanceChecks(sql string, opts Options) []core.Warning {
	var warns []core.Warning
	if opts.MaxInListSize > 0 {
		masked := pattern.Mask(sql)
		for _, loc := range reInList.FindAllStringSubmatchIndex(masked, -1) {
			n := strings.Count(masked[loc[2]:loc[3]], ",") + 1
			if n > opts.MaxInListSize {
				warns = append(warns, core.Warning{
					Kind:       core.WarnPerformance,
					Severity:   core.SeverityWarning,
					Message:    fmt.Sprintf("IN list with %d entries exceeds the configured limit of %d", n, opts.MaxInListSize),
					Suggestion: "load the values into a temporary table and join against it",
				})
			}
		}
	}
	if opts.MaxSubqueryDepth > 0 {
		if depth := subqueryDepth(sql); depth > opts.MaxSubqueryDepth {
			warns = append(warns, core.Warning{
				Kind:       core.WarnPerformance,
				Severity:   core.SeverityWarning,
				Message:    fmt.Sprintf("subqueries nest %d levels deep", depth),
				Suggestion: "flatten the query with joins or CTEs",
			})
		}
	}
	// The wildcard lives inside the literal, so only comments are masked here.
	if reLeadingWild.MatchString(pattern.MaskWith(sql, pattern.MaskOptions{Comments: true})) {
		warns = append(warns, core.Warning{
			Kind:       core.WarnPerformance,
			Severity:   core.SeverityWarning,
			Message:    "LIKE pattern with a leading wildcard defeats index use",
			Suggestion: "consider a full-text or trigram index",
		})
	}
	if pattern.MatchesOutside(sql, reSelectStar) {
		warns = append(warns, core.Warning{
			Kind:     core.WarnPerformance,
			Severity: core.SeverityInfo,
			Message:  "SELECT * returns every column; name the columns the caller needs",
		})
	}
	return warns
}

var keywordRegexps = map[string]*regexp.Regexp{}

func init() {
	for _, kw := range criticalKeywords {
		keywordRegexps[kw] = regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(kw, " ", `\s+`) + `\b`)
	}
}

func keywordRegexp(kw string) *regexp.Regexp { return keywordRegexps[kw] }

// subqueryDepth measures SELECT nesting by tracking parenthesis depth at
// each SELECT keyword outside literals.
func subqueryDepth(sql string) int {
	masked := pattern.Mask(sql)
	reSelect := regexp.MustCompile(`(?i)\bSELECT\b`)
	max := 0
	for _, loc := range reSelect.FindAllStringIndex(masked, -1) {
		depth := 0
		for i := 0; i < loc[0]; i++ {
			switch masked[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		if depth > max {
			max = depth
		}
	}
	return max
}
