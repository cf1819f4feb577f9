//go:build !cgo

package phpdoc

import "errors"

// ErrTreeSitterUnavailable is returned when the binary was built without cgo.
var ErrTreeSitterUnavailable = errors.New("tree-sitter locator requires cgo")

// TreeSitterLocator is unavailable without cgo.
type TreeSitterLocator struct{}

// NewTreeSitterLocator always fails when cgo is disabled.
func NewTreeSitterLocator() (*TreeSitterLocator, error) {
	return nil, ErrTreeSitterUnavailable
}

// TreeSitterAvailable reports whether the tree-sitter backend was compiled in.
func TreeSitterAvailable() bool {
	return false
}

// Locate returns nothing when cgo is disabled.
func (l *TreeSitterLocator) Locate(src string) ([]MethodRecord, []Warning) {
	return nil, nil
}
