package pattern

import "strings"

// SplitStatements splits a script on semicolons that sit outside string
// literals and comments. Each returned statement keeps its terminating
// semicolon and surrounding whitespace, so joining the slices restores the
// original text byte for byte.
func SplitStatements(sql string) []string {
	masked := Mask(sql)
	var stmts []string
	prev := 0
	for i := 0; i < len(masked); i++ {
		if masked[i] == ';' {
			stmts = append(stmts, sql[prev:i+1])
			prev = i + 1
		}
	}
	if prev < len(sql) {
		stmts = append(stmts, sql[prev:])
	}
	if len(stmts) == 0 {
		return []string{sql}
	}
	return stmts
}

// HasContent reports whether a statement contains anything besides
// whitespace, comments, and a terminator.
func HasContent(stmt string) bool {
	masked := Mask(stmt)
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case ' ', '\t', '\n', '\r', ';':
		default:
			return true
		}
	}
	return false
}

// CountOutside counts occurrences of the byte c outside string literals and
// comments. Used by the validation and recovery services for balance checks.
func CountOutside(sql string, c byte) int {
	masked := Mask(sql)
	return strings.Count(masked, string(c))
}

// UnescapedQuoteCount counts single-quote characters that act as literal
// delimiters, treating doubled quotes as escaped content.
func UnescapedQuoteCount(sql string) int {
	count := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] != '\'' {
			continue
		}
		if i+1 < len(sql) && sql[i+1] == '\'' {
			i++
			continue
		}
		count++
	}
	return count
}
