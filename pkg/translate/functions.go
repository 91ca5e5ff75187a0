// Package translate applies the table-driven dialect conversion strategies:
// function renames and restructurings, data-type mappings, and operator or
// clause syntax differences. All rewriting is text-based with string and
// comment spans masked; functions with no mapping entry pass through
// silently on the assumption that they are portable.
package translate

import (
	"regexp"
	"strings"
	"sync"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/pattern"
)

// Functions rewrites every mapped function call for the dialect pair,
// recording an applied rule per mapping that changed the text.
func Functions(sql string, src, tgt dialect.Dialect, acc *core.Accumulator) string {
	for _, m := range pattern.FunctionsFor(src, tgt) {
		out := applyFunctionMapping(sql, m, src, tgt)
		if out == sql {
			continue
		}
		acc.Rule("function: %s -> %s", m.Name, ruleTarget(m))
		if m.Note != "" {
			acc.Warn(core.Warning{
				Kind:     m.WarningKind(),
				Severity: core.SeverityWarning,
				Message:  m.Name + ": " + m.Note,
			})
		}
		sql = out
	}
	return sql
}

func ruleTarget(m pattern.FunctionMapping) string {
	switch m.Transform {
	case pattern.TransformCaseWhen:
		return "CASE WHEN"
	case pattern.TransformTemplate:
		if len(m.Target) > 24 {
			return m.Target[:24] + "..."
		}
		return m.Target
	default:
		return m.Target
	}
}

func applyFunctionMapping(sql string, m pattern.FunctionMapping, src, tgt dialect.Dialect) string {
	if m.Bare {
		return pattern.ReplaceAllOutside(sql, bareRegexp(m.Name), m.Target)
	}
	switch m.Transform {
	case pattern.TransformRename:
		return pattern.RewriteCalls(sql, m.Name, func(c pattern.Call) *string {
			s := m.Target + sql[c.Open:c.End]
			return &s
		})
	case pattern.TransformSwapArgs:
		return pattern.RewriteCalls(sql, m.Name, func(c pattern.Call) *string {
			if len(c.Args) < 2 {
				return nil
			}
			args := append([]string{c.Args[1], c.Args[0]}, c.Args[2:]...)
			s := m.Target + "(" + strings.Join(args, ", ") + ")"
			return &s
		})
	case pattern.TransformCaseWhen:
		return pattern.RewriteCalls(sql, m.Name, func(c pattern.Call) *string {
			return caseWhenFor(m.Name, c.Args)
		})
	case pattern.TransformDateFormat:
		return pattern.RewriteCalls(sql, m.Name, func(c pattern.Call) *string {
			return dateFormatCall(m.Target, c.Args, src, tgt)
		})
	case pattern.TransformTemplate:
		return pattern.RewriteCalls(sql, m.Name, func(c pattern.Call) *string {
			return expandTemplate(m.Target, c.Args)
		})
	default:
		return sql
	}
}

var bareRegexps sync.Map // upper name -> *regexp.Regexp

func bareRegexp(name string) *regexp.Regexp {
	key := strings.ToUpper(name)
	if re, ok := bareRegexps.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	bareRegexps.Store(key, re)
	return re
}

// caseWhenFor restructures conditional functions with no target equivalent
// into CASE WHEN expressions.
func caseWhenFor(name string, args []string) *string {
	switch strings.ToUpper(name) {
	case "DECODE":
		return decodeToCase(args)
	case "IF":
		if len(args) != 3 {
			return nil
		}
		s := "CASE WHEN " + args[0] + " THEN " + args[1] + " ELSE " + args[2] + " END"
		return &s
	default:
		return nil
	}
}

// decodeToCase expands DECODE(expr, search1, result1, ..., default) into a
// searched CASE expression.
func decodeToCase(args []string) *string {
	if len(args) < 3 {
		return nil
	}
	expr := args[0]
	rest := args[1:]
	var b strings.Builder
	b.WriteString("CASE")
	for len(rest) >= 2 {
		b.WriteString(" WHEN " + expr + " = " + rest[0] + " THEN " + rest[1])
		rest = rest[2:]
	}
	if len(rest) == 1 {
		b.WriteString(" ELSE " + rest[0])
	}
	b.WriteString(" END")
	s := b.String()
	return &s
}

// dateFormatCall renames a date-formatting call and remaps the vendor
// tokens inside its format-string argument. Non-literal format arguments
// are renamed but left token-wise untouched.
func dateFormatCall(target string, args []string, src, tgt dialect.Dialect) *string {
	out := make([]string, len(args))
	copy(out, args)
	if len(out) >= 2 {
		if inner, ok := literalValue(out[1]); ok {
			out[1] = "'" + pattern.ConvertDateFormat(inner, src, tgt) + "'"
		}
	}
	s := target + "(" + strings.Join(out, ", ") + ")"
	return &s
}

func literalValue(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if len(arg) >= 2 && arg[0] == '\'' && arg[len(arg)-1] == '\'' {
		return arg[1 : len(arg)-1], true
	}
	return "", false
}

// expandTemplate substitutes %1, %2, ... with positional arguments.
// A call whose arity does not match the template's references is left
// unchanged rather than silently dropping arguments.
func expandTemplate(template string, args []string) *string {
	used := 0
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		if template[i] == '%' && i+1 < len(template) && template[i+1] >= '1' && template[i+1] <= '9' {
			idx := int(template[i+1] - '1')
			if idx >= len(args) {
				return nil
			}
			if idx+1 > used {
				used = idx + 1
			}
			b.WriteString(args[idx])
			i++
			continue
		}
		b.WriteByte(template[i])
	}
	if used < len(args) {
		return nil
	}
	s := b.String()
	return &s
}
