package phpdoc

import "strings"

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// readIdent returns the end of the identifier starting at p.
func readIdent(src string, p int) int {
	for p < len(src) && isIdentPart(src[p]) {
		p++
	}
	return p
}

// skipNonCode returns the end of the string, comment or heredoc starting at
// p, or p itself when none starts there. Unterminated constructs run to the
// end of src.
func skipNonCode(src string, p int) int {
	if p >= len(src) {
		return p
	}
	switch c := src[p]; {
	case c == '\'' || c == '"' || c == '`':
		return skipQuoted(src, p)
	case c == '/' && p+1 < len(src) && src[p+1] == '/':
		return skipLineComment(src, p)
	case c == '#' && !(p+1 < len(src) && src[p+1] == '['):
		return skipLineComment(src, p)
	case c == '/' && p+1 < len(src) && src[p+1] == '*':
		end := strings.Index(src[p+2:], "*/")
		if end < 0 {
			return len(src)
		}
		return p + 2 + end + 2
	case c == '<' && strings.HasPrefix(src[p:], "<<<"):
		if end, ok := skipHeredoc(src, p); ok {
			return end
		}
	}
	return p
}

func skipQuoted(src string, p int) int {
	quote := src[p]
	for i := p + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(src)
}

// skipLineComment stops at the newline or at a closing "?>" tag, which ends
// a line comment in PHP.
func skipLineComment(src string, p int) int {
	for i := p; i < len(src); i++ {
		if src[i] == '\n' {
			return i
		}
		if src[i] == '?' && i+1 < len(src) && src[i+1] == '>' {
			return i
		}
	}
	return len(src)
}

// skipHeredoc handles <<<ID, <<<"ID" and <<<'ID'. ok is false when the text at
// p is not a heredoc opener.
func skipHeredoc(src string, p int) (end int, ok bool) {
	i := p + 3
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	quoted := byte(0)
	if i < len(src) && (src[i] == '\'' || src[i] == '"') {
		quoted = src[i]
		i++
	}
	if i >= len(src) || !isIdentStart(src[i]) {
		return p, false
	}
	idEnd := readIdent(src, i)
	id := src[i:idEnd]
	i = idEnd
	if quoted != 0 {
		if i >= len(src) || src[i] != quoted {
			return p, false
		}
		i++
	}
	nl := strings.IndexByte(src[i:], '\n')
	if nl < 0 {
		return len(src), true
	}
	for lineStart := i + nl + 1; lineStart < len(src); {
		j := lineStart
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if strings.HasPrefix(src[j:], id) {
			k := j + len(id)
			if k >= len(src) || !isIdentPart(src[k]) {
				return k, true
			}
		}
		next := strings.IndexByte(src[lineStart:], '\n')
		if next < 0 {
			break
		}
		lineStart += next + 1
	}
	return len(src), true
}

// skipTrivia skips whitespace and comments.
func skipTrivia(src string, p int) int {
	for p < len(src) {
		if isSpace(src[p]) {
			p++
			continue
		}
		if src[p] == '/' || src[p] == '#' {
			if q := skipNonCode(src, p); q != p {
				p = q
				continue
			}
		}
		break
	}
	return p
}

// findOpenTag returns the offset just past the next "<?php" or "<?=" tag at or
// after p, or -1.
func findOpenTag(src string, p int) int {
	for p < len(src) {
		i := strings.Index(src[p:], "<?")
		if i < 0 {
			return -1
		}
		at := p + i
		rest := src[at+2:]
		if strings.HasPrefix(rest, "=") {
			return at + 3
		}
		if len(rest) >= 3 && strings.EqualFold(rest[:3], "php") && (len(rest) == 3 || !isIdentPart(rest[3])) {
			return at + 5
		}
		p = at + 2
	}
	return -1
}

// matchDelim returns the offset of the delimiter closing the one at open,
// skipping strings, comments, heredocs and inline HTML, or -1.
func matchDelim(src string, open int) int {
	var closer byte
	switch src[open] {
	case '(':
		closer = ')'
	case '[':
		closer = ']'
	case '{':
		closer = '}'
	default:
		return -1
	}
	opener := src[open]
	depth := 0
	for p := open; p < len(src); {
		if q := skipNonCode(src, p); q != p {
			p = q
			continue
		}
		switch c := src[p]; {
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return p
			}
		case c == '?' && p+1 < len(src) && src[p+1] == '>':
			next := findOpenTag(src, p+2)
			if next < 0 {
				return -1
			}
			p = next
			continue
		}
		p++
	}
	return -1
}

// splitTopLevel splits s on sep where it is not nested in brackets or literals.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for p := 0; p < len(s); {
		if q := skipNonCode(s, p); q != p {
			p = q
			continue
		}
		switch s[p] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:p])
				start = p + 1
			}
		}
		p++
	}
	return append(parts, s[start:])
}

// compactType removes all whitespace from a type expression.
func compactType(s string) string {
	return strings.Join(strings.Fields(s), "")
}
