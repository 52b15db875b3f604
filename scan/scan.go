// Package scan provides character-level helpers for bracketed and quoted C++
// expressions: balanced-delimiter splitting, literal-aware bracket matching and
// extraction of calls, blocks and function bodies from source text.
//
// Everything here works on raw text. Nothing is tokenised ahead of time; callers
// pass a position and get back spans, so the helpers can be applied to any slice
// of a file without building a syntax tree.
package scan

import (
	"regexp"
	"strings"
)

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// skipLiteral returns the index just past the string or char literal starting at i.
// When the literal is not terminated the length of text is returned.
func skipLiteral(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(text)
}

// skipIgnored returns the index just past the literal or comment starting at
// text[i], or i when text[i] starts neither. Unterminated input runs to the end.
func skipIgnored(text string, i int) int {
	switch text[i] {
	case '"', '\'':
		return skipLiteral(text, i)
	case '/':
		if i+1 >= len(text) {
			return i
		}
		switch text[i+1] {
		case '/':
			if end := strings.IndexByte(text[i:], '\n'); end >= 0 {
				return i + end
			}
			return len(text)
		case '*':
			if end := strings.Index(text[i+2:], "*/"); end >= 0 {
				return i + 2 + end + 2
			}
			return len(text)
		}
	}
	return i
}

// commentSpans returns the [start, end) ranges of the comments in text.
func commentSpans(text string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(text); i++ {
		next := skipIgnored(text, i)
		if next == i {
			continue
		}
		if text[i] == '/' {
			spans = append(spans, [2]int{i, next})
		}
		i = next - 1
	}
	return spans
}

func inSpan(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

// MatchingClose returns the index of the bracket closing text[openIdx], or -1.
// Brackets inside literals and comments are ignored.
func MatchingClose(text string, openIdx int) int {
	if openIdx < 0 || openIdx >= len(text) {
		return -1
	}
	if _, ok := closers[text[openIdx]]; !ok {
		return -1
	}

	var stack []byte
	for i := openIdx; i < len(text); i++ {
		if next := skipIgnored(text, i); next != i {
			i = next - 1
			continue
		}
		c := text[i]
		switch c {
		case '(', '[', '{':
			stack = append(stack, closers[c])
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitTopLevel splits text at sep occurrences that are outside brackets,
// literals and comments. Items are trimmed; a trailing empty item is dropped.
// A closing bracket that has no opener ends the scan, so the remainder of a
// call can be passed as is.
func SplitTopLevel(text string, sep byte) []string {
	var items []string
	depth := 0
	start := 0

	for i := 0; i < len(text); i++ {
		if next := skipIgnored(text, i); next != i {
			i = next - 1
			continue
		}
		c := text[i]
		switch {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth == 0 {
				return appendItem(items, text[start:i])
			}
			depth--
		case c == sep && depth == 0:
			items = append(items, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	return appendItem(items, text[start:])
}

func appendItem(items []string, rest string) []string {
	if rest = strings.TrimSpace(rest); rest != "" || len(items) > 0 {
		items = append(items, rest)
	}
	if n := len(items); n > 0 && items[n-1] == "" {
		items = items[:n-1]
	}
	return items
}

// Args returns the top-level arguments of the first call in text.
//
//	Args(`PyTuple_Pack(2, a(1, 2), "x,y")`) == []string{"2", "a(1, 2)", `"x,y"`}
func Args(text string) []string {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return nil
	}
	end := MatchingClose(text, open)
	if end < 0 {
		end = len(text)
	}
	return SplitTopLevel(text[open+1:end], ',')
}

// FindCall returns text from pos through the parenthesis closing the first '('
// found at or after pos. Unbalanced input yields the rest of the text.
func FindCall(text string, pos int) string {
	return findEnclosed(text, pos, '(')
}

// FindBlock returns text from pos through the brace closing the first '{' found
// at or after pos. Unbalanced input yields the rest of the text.
func FindBlock(text string, pos int) string {
	return findEnclosed(text, pos, '{')
}

func findEnclosed(text string, pos int, open byte) string {
	if pos < 0 || pos >= len(text) {
		return ""
	}
	idx := strings.IndexByte(text[pos:], open)
	if idx < 0 {
		return ""
	}
	end := MatchingClose(text, pos+idx)
	if end < 0 {
		return text[pos:]
	}
	return text[pos : end+1]
}

// FunctionBody returns the definition of className::funcName, from its name
// through the closing brace of its body. An empty className searches for a free
// function. The second result is false when no definition is found.
func FunctionBody(content, className, funcName string) (string, bool) {
	name := regexp.QuoteMeta(funcName)
	if className != "" {
		name = regexp.QuoteMeta(className) + `\s*::\s*` + name
	}
	re := regexp.MustCompile(`\b` + name + `\s*\(`)
	comments := commentSpans(content)

	for _, loc := range re.FindAllStringIndex(content, -1) {
		if inSpan(comments, loc[0]) {
			continue
		}
		paramsEnd := MatchingClose(content, loc[1]-1)
		if paramsEnd < 0 {
			continue
		}
		brace, ok := definitionBrace(content, paramsEnd+1)
		if !ok {
			continue
		}
		body := FindBlock(content, brace)
		if body == "" {
			continue
		}
		return content[loc[0]:brace] + body, true
	}
	return "", false
}

// definitionBrace returns the index of the '{' opening a body at or after
// pos. A definition continues with an optional qualifier and then the body;
// a call or declaration continues with ';' or an operator.
func definitionBrace(text string, pos int) (int, bool) {
	for i := pos; i < len(text); i++ {
		if next := skipIgnored(text, i); next != i {
			i = next - 1
			continue
		}
		switch text[i] {
		case '{':
			return i, true
		case ';', '=', '(', ')':
			return -1, false
		}
	}
	return -1, false
}

// Unquote removes C string quoting. Adjacent literals are concatenated and the
// common escapes are decoded. Text without quotes is returned trimmed.
//
//	Unquote(`"Returns " "a vector"`) == "Returns a vector"
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, `"`) {
		return strings.Trim(s, "'")
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		end := skipLiteral(s, i)
		inner := s[i+1 : end]
		inner = strings.TrimSuffix(inner, `"`)
		sb.WriteString(unescape(inner))
		i = end - 1
	}
	return sb.String()
}

var escapes = strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\t`, "\t", `\\`, `\`, `\'`, `'`)

func unescape(s string) string {
	return escapes.Replace(s)
}

// IsWrapped reports whether the whole of s is enclosed by the bracket pair
// starting at s[0], e.g. "(a + b)" but not "(a) + (b)".
func IsWrapped(s string) bool {
	if len(s) < 2 {
		return false
	}
	return MatchingClose(s, 0) == len(s)-1
}

// LiteralEnd returns the index just past the string or char literal that starts
// at text[i].
func LiteralEnd(text string, i int) int {
	return skipLiteral(text, i)
}
