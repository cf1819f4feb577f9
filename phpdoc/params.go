package phpdoc

import "strings"

var promotionKeywords = map[string]bool{
	"public":    true,
	"protected": true,
	"private":   true,
	"readonly":  true,
}

// parseParams splits the text between a declaration's parentheses into
// parameters. Pieces without a $name are returned in bad.
func parseParams(text string) (params []Param, bad []string) {
	if strings.TrimSpace(stripComments(text)) == "" {
		return nil, nil
	}
	pieces := splitTopLevel(text, ',')
	for i, piece := range pieces {
		piece = strings.TrimSpace(stripComments(piece))
		if piece == "" {
			// trailing comma
			if i == len(pieces)-1 {
				continue
			}
			bad = append(bad, piece)
			continue
		}
		p, ok := parseParam(piece)
		if !ok {
			bad = append(bad, piece)
			continue
		}
		params = append(params, p)
	}
	return params, bad
}

func parseParam(piece string) (Param, bool) {
	piece = stripAttributes(piece)

	dollar := strings.IndexByte(piece, '$')
	if dollar < 0 || dollar+1 >= len(piece) || !isIdentStart(piece[dollar+1]) {
		return Param{}, false
	}
	nameEnd := readIdent(piece, dollar+1)
	p := Param{Name: piece[dollar+1 : nameEnd]}

	head := strings.TrimSpace(piece[:dollar])
	if strings.HasSuffix(head, "...") {
		p.Variadic = true
		head = strings.TrimSpace(strings.TrimSuffix(head, "..."))
	}
	if strings.HasSuffix(head, "&") {
		p.ByRef = true
		head = strings.TrimSpace(strings.TrimSuffix(head, "&"))
	}
	fields := strings.Fields(head)
	for len(fields) > 0 && promotionKeywords[strings.ToLower(fields[0])] {
		fields = fields[1:]
	}
	p.Type = strings.Join(fields, "")

	tail := strings.TrimSpace(piece[nameEnd:])
	if strings.HasPrefix(tail, "=") {
		p.HasDefault = true
		p.Default = strings.TrimSpace(tail[1:])
	}
	return p, true
}

// stripAttributes removes leading #[...] groups.
func stripAttributes(s string) string {
	for strings.HasPrefix(s, "#[") {
		end := matchDelim(s, 1)
		if end < 0 {
			return s
		}
		s = strings.TrimSpace(s[end+1:])
	}
	return s
}
