package pattern

import (
	"regexp"
	"strings"
	"sync"
)

// Call is one function invocation found in SQL text.
type Call struct {
	Start int      // index of the first character of the function name
	Open  int      // index of the opening parenthesis
	End   int      // index just past the matching closing parenthesis
	Name  string   // name as written in the source
	Args  []string // top-level arguments, trimmed
}

// Text returns the full call text from the original SQL.
func (c Call) Text(sql string) string { return sql[c.Start:c.End] }

// FindCalls locates every call to name (case-insensitive, word-boundary
// matched) outside string literals and comments. Calls with unbalanced
// parentheses are skipped; the recovery service deals with those.
func FindCalls(sql, name string) []Call {
	re := callRegexp(name)
	masked := Mask(sql)
	var calls []Call
	for _, loc := range re.FindAllStringIndex(masked, -1) {
		open := strings.IndexByte(sql[loc[0]:loc[1]], '(') + loc[0]
		end, ok := matchParen(masked, open)
		if !ok {
			continue
		}
		args := splitArgs(sql[open+1:end-1], masked[open+1:end-1])
		calls = append(calls, Call{
			Start: loc[0],
			Open:  open,
			End:   end,
			Name:  strings.TrimSpace(sql[loc[0] : loc[1]-1]),
			Args:  args,
		})
	}
	return calls
}

var callRegexps = struct {
	mu sync.RWMutex
	m  map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

func callRegexp(name string) *regexp.Regexp {
	key := strings.ToUpper(name)
	callRegexps.mu.RLock()
	re, ok := callRegexps.m[key]
	callRegexps.mu.RUnlock()
	if ok {
		return re
	}
	re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*\(`)
	callRegexps.mu.Lock()
	callRegexps.m[key] = re
	callRegexps.mu.Unlock()
	return re
}

// matchParen scans masked text from the opening parenthesis at open and
// returns the index just past its matching close.
func matchParen(masked string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(masked); i++ {
		switch masked[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// SplitArgs splits a comma-separated argument list at the top nesting
// level, honoring parentheses, string literals, and comments.
func SplitArgs(list string) []string {
	return splitArgs(list, Mask(list))
}

func splitArgs(orig, masked string) []string {
	if strings.TrimSpace(orig) == "" {
		return nil
	}
	var args []string
	depth, prev := 0, 0
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(orig[prev:i]))
				prev = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(orig[prev:]))
	return args
}

// RewriteCalls replaces every call to name using the rewrite function,
// processing matches right to left so earlier indexes stay valid. A nil
// return from rewrite leaves that call unchanged.
func RewriteCalls(sql, name string, rewrite func(Call) *string) string {
	calls := FindCalls(sql, name)
	for i := len(calls) - 1; i >= 0; i-- {
		if repl := rewrite(calls[i]); repl != nil {
			sql = sql[:calls[i].Start] + *repl + sql[calls[i].End:]
		}
	}
	return sql
}
