//go:build cgo

package phpdoc

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

var declarationNodeTypes = map[string]bool{
	"method_declaration":  true,
	"function_definition": true,
}

// TreeSitterLocator is a Locator backed by the tree-sitter PHP grammar.
type TreeSitterLocator struct{}

// NewTreeSitterLocator returns the tree-sitter backed Locator.
func NewTreeSitterLocator() (*TreeSitterLocator, error) {
	return &TreeSitterLocator{}, nil
}

// TreeSitterAvailable reports whether the tree-sitter backend was compiled in.
func TreeSitterAvailable() bool {
	return true
}

// Locate implements Locator.
func (l *TreeSitterLocator) Locate(src string) ([]MethodRecord, []Warning) {
	source := []byte(src)
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, []Warning{{Line: 1, Message: "parse error: " + err.Error()}}
	}

	var records []MethodRecord
	var warnings []Warning
	for _, node := range findDeclarations(tree.RootNode()) {
		rec, warn := recordFromNode(node, src)
		if warn != nil {
			warnings = append(warnings, *warn)
			continue
		}
		records = append(records, rec)
	}
	return records, warnings
}

// findDeclarations walks the tree in document order without descending into
// matched declarations.
func findDeclarations(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	if declarationNodeTypes[node.Type()] {
		return []*sitter.Node{node}
	}
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		out = append(out, findDeclarations(node.Child(i))...)
	}
	return out
}

func recordFromNode(node *sitter.Node, src string) (MethodRecord, *Warning) {
	start := int(node.StartByte())
	warnAt := func(msg string) *Warning {
		return &Warning{Offset: start, Line: int(node.StartPoint().Row) + 1, Message: msg}
	}

	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	if nameNode == nil || paramsNode == nil || nameNode.IsMissing() || paramsNode.IsMissing() {
		return MethodRecord{}, warnAt("declaration without name or parameters")
	}
	name := nameNode.Content([]byte(src))

	rec := MethodRecord{Name: name}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "function" {
			break
		}
		if strings.HasSuffix(child.Type(), "_modifier") {
			rec.Modifiers = append(rec.Modifiers, strings.ToLower(child.Content([]byte(src))))
		}
	}
	rec.Visibility = visibilityOf(rec.Modifiers)

	paramText := src[paramsNode.StartByte():paramsNode.EndByte()]
	paramText = strings.TrimSuffix(strings.TrimPrefix(paramText, "("), ")")
	params, _ := parseParams(paramText)
	rec.Signature.Params = params
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		rec.Signature.ReturnType = compactType(strings.TrimPrefix(stripComments(rt.Content([]byte(src))), ":"))
	}

	end := int(node.EndByte())
	if body := node.ChildByFieldName("body"); body != nil {
		if body.HasError() || body.IsMissing() {
			return MethodRecord{}, warnAt("unterminated body for " + name)
		}
		rec.BodySpan = Span{Start: int(body.StartByte()), End: int(body.EndByte())}
	} else {
		semi := strings.LastIndexByte(src[start:end], ';')
		if semi < 0 {
			return MethodRecord{}, warnAt("declaration of " + name + " has no body")
		}
		rec.BodySpan = Span{Start: start + semi, End: start + semi}
	}

	rec.DeclSpan = Span{Start: start, End: end}
	rec.Line = lineOf(src, start)
	rec.InsertionPoint = start
	if doc := precedingDocblock(node, src); doc != nil {
		rec.Existing = doc
		rec.InsertionPoint = doc.Span.Start
	}
	rec.Indent = indentAt(src, rec.InsertionPoint)
	return rec, nil
}

// precedingDocblock returns the /** */ comment directly above node, with only
// whitespace between them.
func precedingDocblock(node *sitter.Node, src string) *Docblock {
	prev := node.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return nil
	}
	start, end := int(prev.StartByte()), int(prev.EndByte())
	text := src[start:end]
	if !strings.HasPrefix(text, "/**") || strings.HasPrefix(text, "/**/") {
		return nil
	}
	if strings.TrimSpace(src[end:node.StartByte()]) != "" {
		return nil
	}
	return &Docblock{Span: Span{Start: start, End: end}, Text: text}
}
