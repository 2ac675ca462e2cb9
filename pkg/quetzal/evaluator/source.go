package evaluator

import (
	"strings"
)

// sourceLine is one logical line of a program with the 1-based number of
// the physical line it starts on.
type sourceLine struct {
	no   int
	text string
}

const byteOrderMark = "\uFEFF"

// prepareSource turns program text into logical lines: comments removed,
// continuations folded, blank lines dropped.
func prepareSource(src string) ([]sourceLine, error) {
	lines, err := stripComments(splitSource(src))
	if err != nil {
		return nil, err
	}
	return foldLines(lines), nil
}

func splitSource(src string) []sourceLine {
	src = strings.TrimPrefix(src, byteOrderMark)
	raw := strings.Split(src, "\n")
	lines := make([]sourceLine, len(raw))
	for i, text := range raw {
		lines[i] = sourceLine{no: i + 1, text: strings.TrimSuffix(text, "\r")}
	}
	return lines
}

// stripComments removes // line comments and /* */ block comments, which
// nest and may span lines. Quoted text is left alone.
func stripComments(lines []sourceLine) ([]sourceLine, error) {
	out := make([]sourceLine, 0, len(lines))
	depth := 0
	openedAt := 0
	for _, l := range lines {
		var sb strings.Builder
		s := l.text
		for i := 0; i < len(s); i++ {
			if depth > 0 {
				switch {
				case strings.HasPrefix(s[i:], "/*"):
					depth++
					i++
				case strings.HasPrefix(s[i:], "*/"):
					depth--
					i++
					if depth == 0 {
						sb.WriteByte(' ')
					}
				}
				continue
			}
			switch {
			case s[i] == '"':
				end := closingQuote(s, i)
				if end < 0 {
					sb.WriteString(s[i:])
					i = len(s)
					continue
				}
				sb.WriteString(s[i : end+1])
				i = end
			case strings.HasPrefix(s[i:], "//"):
				i = len(s)
			case strings.HasPrefix(s[i:], "/*"):
				depth = 1
				openedAt = l.no
				i++
			default:
				sb.WriteByte(s[i])
			}
		}
		out = append(out, sourceLine{no: l.no, text: sb.String()})
	}
	if depth > 0 {
		return nil, newStructuredErrorAt("SINTAXIS-0003", openedAt)
	}
	return out, nil
}

// foldLines joins physical lines into logical ones. A line continues onto
// the next while a parenthesis, bracket or jsn literal is open, when it
// ends with a binary operator or comma, or when the next line starts a
// method chain or logical operator.
func foldLines(lines []sourceLine) []sourceLine {
	var out []sourceLine
	for i := 0; i < len(lines); i++ {
		text := strings.TrimSpace(lines[i].text)
		if text == "" {
			continue
		}
		cur := sourceLine{no: lines[i].no, text: text}
		for {
			j := nextNonBlank(lines, i+1)
			if j < 0 {
				break
			}
			next := strings.TrimSpace(lines[j].text)
			if !continuesOnto(cur.text, next) {
				break
			}
			cur.text += " " + next
			i = j
		}
		out = append(out, cur)
	}
	return out
}

func nextNonBlank(lines []sourceLine, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j].text) != "" {
			return j
		}
	}
	return -1
}

var trailingOperators = []string{"&&", "||", "+", "-", "*", "/", "%", ",", "?"}
var leadingContinuations = []string{".", "&&", "||", "?", ":"}

func continuesOnto(text, next string) bool {
	if hasOpenExpression(text) {
		return true
	}
	if !strings.HasSuffix(text, "++") && !strings.HasSuffix(text, "--") {
		for _, op := range trailingOperators {
			if strings.HasSuffix(text, op) {
				return true
			}
		}
	}
	for _, op := range leadingContinuations {
		if strings.HasPrefix(next, op) {
			return true
		}
	}
	return false
}

// hasOpenExpression reports whether text leaves a parenthesis, bracket,
// string or jsn literal open. Braces that open statement blocks do not
// count: a brace is a literal when it follows '=', '(', '[', ',', ':',
// '?', the retornar keyword, or sits inside another literal.
func hasOpenExpression(text string) bool {
	var stack []bool // true for literal openers
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '"':
			end := closingQuote(text, i)
			if end < 0 {
				return true
			}
			i = end
		case '(', '[':
			stack = append(stack, true)
		case '{':
			literal := len(stack) > 0 && stack[len(stack)-1]
			if !literal {
				prefix := strings.TrimSpace(text[:i])
				literal = strings.HasSuffix(prefix, "retornar") || (prefix != "" && strings.ContainsRune("=([,:?", rune(prefix[len(prefix)-1])))
			}
			stack = append(stack, literal)
		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	for _, literal := range stack {
		if literal {
			return true
		}
	}
	return false
}

// blockOpen returns the index of the brace that opens the block of a
// construct header, or -1.
func blockOpen(header string) int {
	found := -1
	topLevel(header, func(i int) bool {
		if header[i] == '{' {
			found = i
			return false
		}
		return true
	})
	return found
}

// extractBlock returns the body of the block whose header is lines[i],
// with header standing in for lines[i].text. end is the index of the line
// holding the closing brace and rest is whatever follows that brace.
func extractBlock(lines []sourceLine, i int, header string) (body []sourceLine, end int, rest string, err error) {
	open := blockOpen(header)
	if open < 0 {
		return nil, 0, "", newMalformedError("bloque", header).WithLine(lines[i].no)
	}
	depth := 0
	for j := i; j < len(lines); j++ {
		text := lines[j].text
		start := 0
		if j == i {
			text = header
			start = open
		}
		segStart := start
		if j == i {
			segStart = open + 1
		}
		for k := start; k < len(text); k++ {
			switch text[k] {
			case '"':
				if e := closingQuote(text, k); e >= 0 {
					k = e
				}
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					if seg := strings.TrimSpace(text[segStart:k]); seg != "" {
						body = append(body, sourceLine{no: lines[j].no, text: seg})
					}
					return body, j, strings.TrimSpace(text[k+1:]), nil
				}
			}
		}
		if seg := strings.TrimSpace(text[segStart:]); seg != "" {
			body = append(body, sourceLine{no: lines[j].no, text: seg})
		}
	}
	return nil, 0, "", newStructuredErrorAt("SINTAXIS-0002", lines[i].no)
}
