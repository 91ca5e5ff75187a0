package pattern

import (
	"regexp"
	"strings"
)

// MaskOptions selects which span kinds to blank out.
type MaskOptions struct {
	Strings  bool // single-quoted literals, quoted identifiers, backticks
	Comments bool // -- line comments, # line comments, /* */ blocks
}

// Mask returns sql with the contents of string literals and comments
// replaced by spaces. The output has the same length as the input, so match
// indexes found on the masked text are valid on the original. Quote and
// comment delimiters are preserved.
func Mask(sql string) string {
	return MaskWith(sql, MaskOptions{Strings: true, Comments: true})
}

// MaskStrings masks literal contents but leaves comments visible. Used by
// rewrites that must see comment text, such as optimizer-hint stripping.
func MaskStrings(sql string) string {
	return MaskWith(sql, MaskOptions{Strings: true})
}

// MaskWith masks the selected span kinds.
func MaskWith(sql string, opt MaskOptions) string {
	out := []byte(sql)
	n := len(sql)
	i := 0
	for i < n {
		switch c := sql[i]; {
		case c == '\'' && opt.Strings:
			i = maskQuoted(sql, out, i, '\'')
		case c == '"' && opt.Strings:
			i = maskQuoted(sql, out, i, '"')
		case c == '`' && opt.Strings:
			i = maskQuoted(sql, out, i, '`')
		case c == '\'' || c == '"' || c == '`':
			// Masking disabled for strings: still skip the literal so a
			// quote character never starts a comment span mid-literal.
			i = skipQuoted(sql, i, c)
		case c == '-' && i+1 < n && sql[i+1] == '-':
			i = maskLine(sql, out, i, opt.Comments)
		case c == '#':
			i = maskLine(sql, out, i, opt.Comments)
		case c == '/' && i+1 < n && sql[i+1] == '*':
			i = maskBlock(sql, out, i, opt.Comments)
		default:
			i++
		}
	}
	return string(out)
}

// maskQuoted blanks the interior of a quoted span starting at i.
// Doubled quotes escape the delimiter; backslash escapes are honored inside
// single quotes for MySQL-style input.
func maskQuoted(sql string, out []byte, i int, quote byte) int {
	n := len(sql)
	j := i + 1
	for j < n {
		if sql[j] == '\\' && quote == '\'' && j+1 < n {
			blank(out, j, j+2)
			j += 2
			continue
		}
		if sql[j] == quote {
			if j+1 < n && sql[j+1] == quote {
				blank(out, j, j+2)
				j += 2
				continue
			}
			return j + 1
		}
		blank(out, j, j+1)
		j++
	}
	return j
}

func skipQuoted(sql string, i int, quote byte) int {
	n := len(sql)
	j := i + 1
	for j < n {
		if sql[j] == '\\' && quote == '\'' && j+1 < n {
			j += 2
			continue
		}
		if sql[j] == quote {
			if j+1 < n && sql[j+1] == quote {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return j
}

func maskLine(sql string, out []byte, i int, mask bool) int {
	j := strings.IndexByte(sql[i:], '\n')
	end := len(sql)
	if j >= 0 {
		end = i + j
	}
	if mask {
		blank(out, i, end)
	}
	return end
}

func maskBlock(sql string, out []byte, i int, mask bool) int {
	j := strings.Index(sql[i+2:], "*/")
	end := len(sql)
	if j >= 0 {
		end = i + 2 + j + 2
	}
	if mask {
		blank(out, i, end)
	}
	return end
}

func blank(out []byte, from, to int) {
	for k := from; k < to && k < len(out); k++ {
		if out[k] != '\n' {
			out[k] = ' '
		}
	}
}

// ReplaceAllOutside applies re.ReplaceAllString to every match that lies
// outside string literals and comments, leaving masked spans untouched.
func ReplaceAllOutside(sql string, re *regexp.Regexp, repl string) string {
	return replaceOutside(sql, Mask(sql), re, func(match string) string {
		return re.ReplaceAllString(match, repl)
	})
}

// ReplaceAllFuncOutside is ReplaceAllOutside with a replacement function.
func ReplaceAllFuncOutside(sql string, re *regexp.Regexp, repl func(match string) string) string {
	return replaceOutside(sql, Mask(sql), re, repl)
}

// ReplaceAllStringsMasked is ReplaceAllOutside, but with comments left
// visible to the pattern. Needed for rewrites that target comment syntax
// such as optimizer hints.
func ReplaceAllStringsMasked(sql string, re *regexp.Regexp, repl string) string {
	return replaceOutside(sql, MaskStrings(sql), re, func(match string) string {
		return re.ReplaceAllString(match, repl)
	})
}

// ReplaceAllCommentsMasked is the opposite trade: string literals stay
// visible to the pattern while comments are blanked. Needed for rewrites
// that inspect literal text, such as INTERVAL quantities.
func ReplaceAllCommentsMasked(sql string, re *regexp.Regexp, repl func(match string) string) string {
	return replaceOutside(sql, MaskWith(sql, MaskOptions{Comments: true}), re, repl)
}

func replaceOutside(sql, masked string, re *regexp.Regexp, repl func(string) string) string {
	locs := re.FindAllStringIndex(masked, -1)
	if len(locs) == 0 {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql))
	prev := 0
	for _, loc := range locs {
		b.WriteString(sql[prev:loc[0]])
		b.WriteString(repl(sql[loc[0]:loc[1]]))
		prev = loc[1]
	}
	b.WriteString(sql[prev:])
	return b.String()
}

// StripComments removes every comment while leaving string literals and
// their contents intact. Line comments take their trailing newline's place;
// block comments collapse to a single space so adjacent tokens stay apart.
func StripComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	n := len(sql)
	i := 0
	for i < n {
		switch c := sql[i]; {
		case c == '\'' || c == '"' || c == '`':
			j := skipQuoted(sql, i, c)
			b.WriteString(sql[i:j])
			i = j
		case (c == '-' && i+1 < n && sql[i+1] == '-') || c == '#':
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				i = n
				continue
			}
			i += j // keep the newline
		case c == '/' && i+1 < n && sql[i+1] == '*':
			j := strings.Index(sql[i+2:], "*/")
			if j < 0 {
				i = n
				continue
			}
			b.WriteByte(' ')
			i += 2 + j + 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// MatchesOutside reports whether re matches anywhere outside string
// literals and comments. Used for cheap converter applicability gates.
func MatchesOutside(sql string, re *regexp.Regexp) bool {
	return re.MatchString(Mask(sql))
}

// FindAllIndexOutside returns match index pairs located outside string
// literals and comments.
func FindAllIndexOutside(sql string, re *regexp.Regexp) [][]int {
	return re.FindAllStringIndex(Mask(sql), -1)
}
