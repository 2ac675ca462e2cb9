package evaluator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expressions are evaluated straight from source text. The helpers here
// find operators and delimiters at nesting depth zero, skipping over
// string literals so that quoted text never changes the structure.

// closingQuote returns the index of the quote that ends the string literal
// starting at s[start], or -1 if it is unterminated. Backslash escapes the
// next byte.
func closingQuote(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// topLevel calls fn with the index of every byte of s that sits outside
// string literals and at bracket depth zero. Opening brackets are reported
// before the depth increases, closing brackets after it drops. Iteration
// stops when fn returns false.
func topLevel(s string, fn func(i int) bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			end := closingQuote(s, i)
			if end < 0 {
				return
			}
			if depth == 0 && !fn(i) {
				return
			}
			i = end
			continue
		}
		switch c {
		case '(', '[', '{':
			if depth == 0 && !fn(i) {
				return
			}
			depth++
			continue
		case ')', ']', '}':
			depth--
		}
		if depth == 0 && !fn(i) {
			return
		}
	}
}

// bracketBalance reports the net bracket depth of s outside strings and
// whether a string literal is left open.
func bracketBalance(s string) (depth int, openString bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			end := closingQuote(s, i)
			if end < 0 {
				return depth, true
			}
			i = end
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth, false
}

// checkBalanced fails when brackets or strings in expr are unbalanced.
func checkBalanced(expr string) error {
	depth, open := bracketBalance(expr)
	if open {
		return newStructuredError("SINTAXIS-0004", nil)
	}
	if depth != 0 {
		return newStructuredError("SINTAXIS-0005", map[string]any{"Expr": expr})
	}
	return nil
}

// matchingClose returns the index of the bracket closing the one at
// s[open], or -1.
func matchingClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"':
			end := closingQuote(s, i)
			if end < 0 {
				return -1
			}
			i = end
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep at depth zero. An empty s gives no parts.
func splitTopLevel(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	last := 0
	topLevel(s, func(i int) bool {
		if s[i] == sep {
			parts = append(parts, strings.TrimSpace(s[last:i]))
			last = i + 1
		}
		return true
	})
	return append(parts, strings.TrimSpace(s[last:]))
}

// indexTopLevel returns the first depth-zero index of tok in s, or -1.
func indexTopLevel(s, tok string) int {
	found := -1
	topLevel(s, func(i int) bool {
		if strings.HasPrefix(s[i:], tok) {
			found = i
			return false
		}
		return true
	})
	return found
}

// indexWordTopLevel finds word at depth zero as a whole word with
// non-empty text on both sides, as used by the y/o/en keywords.
func indexWordTopLevel(s, word string) int {
	found := -1
	topLevel(s, func(i int) bool {
		if i == 0 || !strings.HasPrefix(s[i:], word) {
			return true
		}
		before, _ := utf8.DecodeLastRuneInString(s[:i])
		after, _ := utf8.DecodeRuneInString(s[i+len(word):])
		if before != ' ' || after != ' ' {
			return true
		}
		if strings.TrimSpace(s[:i]) == "" || strings.TrimSpace(s[i+len(word):]) == "" {
			return true
		}
		found = i
		return false
	})
	return found
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isIdentifier reports whether s is a syntactically valid name.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

// identifierPrefix returns the length in bytes of the identifier at the
// start of s.
func identifierPrefix(s string) int {
	n := 0
	for i, r := range s {
		if (i == 0 && !isIdentStart(r)) || !isIdentPart(r) {
			break
		}
		n = i + utf8.RuneLen(r)
	}
	return n
}

// unquote turns the body of a string literal into its value. \n, \t, \r,
// \" and \\ are escapes; any other backslash sequence is kept as written.
func unquote(body string) string {
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}
