package phpdoc

import (
	"fmt"
	"strings"
)

var modifierKeywords = map[string]bool{
	"public":    true,
	"protected": true,
	"private":   true,
	"static":    true,
	"abstract":  true,
	"final":     true,
	"readonly":  true,
}

// Scanner is the default Locator. It walks the source once, skipping strings,
// comments, heredocs and inline HTML, and anchors on the function keyword.
type Scanner struct{}

// NewScanner returns the scanner-based Locator.
func NewScanner() *Scanner { return &Scanner{} }

// Locate implements Locator.
func (Scanner) Locate(src string) ([]MethodRecord, []Warning) {
	s := &scan{src: src, declStart: -1}
	s.run()
	return s.records, s.warnings
}

// Locate runs the default scanner over src.
func Locate(src string) ([]MethodRecord, []Warning) {
	return Scanner{}.Locate(src)
}

type scan struct {
	src      string
	pos      int
	records  []MethodRecord
	warnings []Warning

	// pending declaration state, cleared by any token that is not an
	// attribute, modifier or docblock
	doc       *Docblock
	declStart int
	modifiers []string
	prevWord  string
}

func (s *scan) warn(offset int, format string, args ...any) {
	s.warnings = append(s.warnings, Warning{
		Offset:  offset,
		Line:    lineOf(s.src, offset),
		Message: fmt.Sprintf(format, args...),
	})
}

func (s *scan) reset() {
	s.doc = nil
	s.declStart = -1
	s.modifiers = nil
}

func (s *scan) run() {
	src := s.src
	inPHP := false
	for s.pos < len(src) {
		if !inPHP {
			next := findOpenTag(src, s.pos)
			if next < 0 {
				return
			}
			s.pos = next
			inPHP = true
			s.reset()
			continue
		}

		c := src[s.pos]
		switch {
		case isSpace(c):
			s.pos++

		case c == '?' && strings.HasPrefix(src[s.pos:], "?>"):
			s.pos += 2
			inPHP = false
			s.reset()

		case strings.HasPrefix(src[s.pos:], "/**") && !strings.HasPrefix(src[s.pos:], "/**/"):
			end := strings.Index(src[s.pos+3:], "*/")
			if end < 0 {
				s.warn(s.pos, "unterminated docblock")
				return
			}
			stop := s.pos + 3 + end + 2
			s.doc = &Docblock{Span: Span{Start: s.pos, End: stop}, Text: src[s.pos:stop]}
			s.pos = stop

		case c == '#' && s.pos+1 < len(src) && src[s.pos+1] == '[':
			end := matchDelim(src, s.pos+1)
			if end < 0 {
				s.warn(s.pos, "unterminated attribute")
				s.reset()
				s.pos += 2
				continue
			}
			if s.declStart < 0 {
				s.declStart = s.pos
			}
			s.pos = end + 1

		case isIdentStart(c):
			s.word()

		default:
			if q := skipNonCode(src, s.pos); q != s.pos {
				if q >= len(src) && !isLineComment(src, s.pos) {
					s.warn(s.pos, "unterminated literal or comment")
				}
				s.pos = q
			} else {
				s.pos++
			}
			s.reset()
			s.prevWord = ""
		}
	}
}

// word handles an identifier token at s.pos.
func (s *scan) word() {
	src := s.src
	start := s.pos
	end := readIdent(src, start)
	lower := strings.ToLower(src[start:end])
	s.pos = end

	if isMemberAccess(src, start) {
		s.reset()
		s.prevWord = lower
		return
	}

	if modifierKeywords[lower] {
		if s.declStart < 0 {
			s.declStart = start
		}
		s.modifiers = append(s.modifiers, lower)
		s.prevWord = lower
		return
	}

	if lower == "function" && s.prevWord != "use" {
		s.function(start, end)
		s.prevWord = ""
		return
	}

	s.reset()
	s.prevWord = lower
}

// isMemberAccess reports whether the identifier at p follows '$', '->' or '::'.
func isMemberAccess(src string, p int) bool {
	if p > 0 && src[p-1] == '$' {
		return true
	}
	q := p - 1
	for q >= 0 && isSpace(src[q]) {
		q--
	}
	if q < 1 {
		return false
	}
	pair := src[q-1 : q+1]
	return pair == "->" || pair == "::"
}

// function parses a declaration whose keyword spans [kwStart, kwEnd). On
// success the scanner resumes after the body so records never overlap.
func (s *scan) function(kwStart, kwEnd int) {
	src := s.src
	defer s.reset()

	p := skipTrivia(src, kwEnd)
	if p < len(src) && src[p] == '&' {
		p = skipTrivia(src, p+1)
	}
	if p >= len(src) || !isIdentStart(src[p]) {
		// closure
		return
	}
	nameStart := p
	nameEnd := readIdent(src, p)
	name := src[nameStart:nameEnd]

	p = skipTrivia(src, nameEnd)
	if p >= len(src) || src[p] != '(' {
		s.warn(kwStart, "function %s has no parameter list", name)
		return
	}
	closeParen := matchDelim(src, p)
	if closeParen < 0 {
		s.warn(kwStart, "unterminated parameter list for %s", name)
		return
	}
	params, bad := parseParams(src[p+1 : closeParen])
	for _, b := range bad {
		s.warn(p+1, "skipped malformed parameter %q in %s", b, name)
	}

	p = skipTrivia(src, closeParen+1)
	var returnType string
	if p < len(src) && src[p] == ':' {
		q := p + 1
		for q < len(src) && src[q] != '{' && src[q] != ';' {
			if r := skipNonCode(src, q); r != q {
				q = r
				continue
			}
			q++
		}
		returnType = compactType(stripComments(src[p+1 : q]))
		p = q
	}

	if p >= len(src) {
		s.warn(kwStart, "declaration of %s has no body", name)
		return
	}

	var body Span
	var declEnd int
	switch src[p] {
	case ';':
		body = Span{Start: p, End: p}
		declEnd = p + 1
	case '{':
		closeBrace := matchDelim(src, p)
		if closeBrace < 0 {
			s.warn(kwStart, "unterminated body for %s", name)
			s.pos = p + 1
			return
		}
		body = Span{Start: p, End: closeBrace + 1}
		declEnd = closeBrace + 1
	default:
		s.warn(kwStart, "unexpected %q after signature of %s", src[p], name)
		return
	}

	declStart := kwStart
	if s.declStart >= 0 {
		declStart = s.declStart
	}
	rec := MethodRecord{
		Name:       name,
		Visibility: visibilityOf(s.modifiers),
		Modifiers:  s.modifiers,
		Signature:  Signature{Params: params, ReturnType: returnType},
		DeclSpan:   Span{Start: declStart, End: declEnd},
		BodySpan:   body,
		Existing:   s.doc,
		Line:       lineOf(src, declStart),
	}
	rec.InsertionPoint = declStart
	if rec.Existing != nil {
		rec.InsertionPoint = rec.Existing.Span.Start
	}
	rec.Indent = indentAt(src, rec.InsertionPoint)

	s.records = append(s.records, rec)
	s.pos = declEnd
}

// visibilityOf defaults to Public when no access modifier is present.
func visibilityOf(mods []string) Visibility {
	for _, m := range mods {
		switch m {
		case "public":
			return Public
		case "protected":
			return Protected
		case "private":
			return Private
		}
	}
	return Public
}

func isLineComment(src string, p int) bool {
	return strings.HasPrefix(src[p:], "//") || (src[p] == '#' && !strings.HasPrefix(src[p:], "#["))
}

// stripComments blanks out comments in a short fragment.
func stripComments(s string) string {
	var b strings.Builder
	for p := 0; p < len(s); {
		if q := skipNonCode(s, p); q != p {
			if s[p] == '/' || s[p] == '#' {
				b.WriteByte(' ')
			} else {
				b.WriteString(s[p:q])
			}
			p = q
			continue
		}
		b.WriteByte(s[p])
		p++
	}
	return b.String()
}
