package docx

import (
	"html"
	"strings"
)

// textNode is one <w:t> element of a part.
type textNode struct {
	elemStart    int
	contentStart int
	contentEnd   int
	elemEnd      int
	text         string
}

// scanParagraphs groups the <w:t> nodes of an XML part by enclosing
// <w:p>. Nested paragraphs (text boxes) form their own groups.
func scanParagraphs(doc string) [][]textNode {
	var (
		stack [][]textNode
		done  [][]textNode
	)
	i := 0
	for i < len(doc) {
		lt := strings.IndexByte(doc[i:], '<')
		if lt < 0 {
			break
		}
		lt += i

		if skip, ok := skipSpecial(doc, lt); ok {
			i = skip
			continue
		}

		gt := strings.IndexByte(doc[lt:], '>')
		if gt < 0 {
			break
		}
		gt += lt

		name, closing, selfClosing := parseTag(doc[lt+1 : gt])
		switch {
		case name == "w:p" && closing:
			if n := len(stack); n > 0 {
				if len(stack[n-1]) > 0 {
					done = append(done, stack[n-1])
				}
				stack = stack[:n-1]
			}
		case name == "w:p" && !selfClosing:
			stack = append(stack, nil)
		case name == "w:t" && !closing && !selfClosing:
			end := strings.Index(doc[gt+1:], "</w:t>")
			if end < 0 {
				i = len(doc)
				continue
			}
			node := textNode{
				elemStart:    lt,
				contentStart: gt + 1,
				contentEnd:   gt + 1 + end,
			}
			node.elemEnd = node.contentEnd + len("</w:t>")
			node.text = html.UnescapeString(doc[node.contentStart:node.contentEnd])
			if n := len(stack); n > 0 {
				stack[n-1] = append(stack[n-1], node)
			} else {
				done = append(done, []textNode{node})
			}
			i = node.elemEnd
			continue
		}
		i = gt + 1
	}

	for _, open := range stack {
		if len(open) > 0 {
			done = append(done, open)
		}
	}
	return done
}

// skipSpecial jumps over comments, CDATA sections and processing
// instructions starting at lt.
func skipSpecial(doc string, lt int) (int, bool) {
	for _, pair := range [][2]string{{"<!--", "-->"}, {"<![CDATA[", "]]>"}, {"<?", "?>"}} {
		if strings.HasPrefix(doc[lt:], pair[0]) {
			end := strings.Index(doc[lt+len(pair[0]):], pair[1])
			if end < 0 {
				return len(doc), true
			}
			return lt + len(pair[0]) + end + len(pair[1]), true
		}
	}
	return 0, false
}

func parseTag(raw string) (name string, closing, selfClosing bool) {
	if strings.HasPrefix(raw, "/") {
		closing = true
		raw = raw[1:]
	}
	if strings.HasSuffix(raw, "/") {
		selfClosing = true
		raw = raw[:len(raw)-1]
	}
	if i := strings.IndexAny(raw, " \t\r\n"); i >= 0 {
		raw = raw[:i]
	}
	return raw, closing, selfClosing
}

// placeholder is a {{...}} tag in the concatenated paragraph text.
type placeholder struct {
	start int
	end   int
	name  string
}

// tagIssue is a syntax problem found while parsing placeholders.
type tagIssue struct {
	tag    string
	reason string
	pos    int
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// parsePlaceholders finds every tag in text and reports malformed ones.
func parsePlaceholders(text string) ([]placeholder, []tagIssue) {
	var (
		tags   []placeholder
		issues []tagIssue
	)
	i := 0
	for i < len(text) {
		open := indexFrom(text, openDelim, i)
		closeAt := indexFrom(text, closeDelim, i)

		if open < 0 && closeAt < 0 {
			break
		}
		if closeAt >= 0 && (open < 0 || closeAt < open) {
			issues = append(issues, tagIssue{tag: closeDelim, reason: ReasonUnopenedTag, pos: closeAt})
			i = closeAt + len(closeDelim)
			continue
		}

		closeAfter := indexFrom(text, closeDelim, open+len(openDelim))
		if closeAfter < 0 {
			issues = append(issues, tagIssue{tag: excerpt(text[open:], 0), reason: ReasonUnclosedTag, pos: open})
			break
		}
		if nextOpen := indexFrom(text, openDelim, open+len(openDelim)); nextOpen >= 0 && nextOpen < closeAfter {
			issues = append(issues, tagIssue{tag: text[open:nextOpen], reason: ReasonUnclosedTag, pos: open})
			i = nextOpen
			continue
		}

		inner := text[open+len(openDelim) : closeAfter]
		name := strings.TrimSpace(inner)
		switch {
		case name == "":
			issues = append(issues, tagIssue{tag: text[open : closeAfter+2], reason: ReasonEmptyTag, pos: open})
		case strings.ContainsAny(name, "{}"):
			issues = append(issues, tagIssue{tag: text[open : closeAfter+2], reason: ReasonNestedDelimiters, pos: open})
		default:
			tags = append(tags, placeholder{start: open, end: closeAfter + len(closeDelim), name: name})
		}
		i = closeAfter + len(closeDelim)
	}
	return tags, issues
}

func indexFrom(s, sub string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.Index(s[from:], sub)
	if i < 0 {
		return -1
	}
	return from + i
}

// excerpt returns the text around pos for error context.
func excerpt(text string, pos int) string {
	const radius = 30
	start := max(0, pos-radius)
	end := min(len(text), pos+radius)
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}
	return text[start:end]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
