// Package parser implements source classification, dependency inference
// and embedded metadata extraction over a real Rust syntax tree.
package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var rustLanguage = sitter.NewLanguage(tree_sitter_rust.Language())

// parse runs the tree-sitter Rust grammar over src. The caller owns the
// returned tree and must Close it.
func parse(src []byte) *sitter.Tree {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(rustLanguage)
	return p.Parse(src, nil)
}

// text returns the source slice covered by node.
func text(src []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(src[node.StartByte():node.EndByte()])
}

// firstError locates the first error or missing node for diagnostics.
// Positions are 1-based; rowOffset accounts for a stripped shebang line.
func firstError(node *sitter.Node, rowOffset int) string {
	if node == nil {
		return "unknown location"
	}
	if node.IsError() || node.IsMissing() {
		pos := node.StartPosition()
		return fmt.Sprintf("%d:%d", int(pos.Row)+1+rowOffset, int(pos.Column)+1)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.HasError() {
			return firstError(child, rowOffset)
		}
	}
	// The error flag is set but no child carries it; report this node.
	pos := node.StartPosition()
	return fmt.Sprintf("%d:%d", int(pos.Row)+1+rowOffset, int(pos.Column)+1)
}

// splitShebang strips a leading "#!" line unless it is an inner
// attribute ("#!["). Returns the shebang line without its newline and
// the remaining source.
func splitShebang(raw string) (shebang, rest string) {
	if !strings.HasPrefix(raw, "#!") || strings.HasPrefix(raw, "#![") {
		return "", raw
	}
	line, body, found := strings.Cut(raw, "\n")
	if !found {
		return line, ""
	}
	return line, body
}

// countEntryPoints counts `fn main` definitions at any depth. Working on
// the tree rather than scanning tokens avoids false positives on "fn
// main" appearing inside string literals or comments.
func countEntryPoints(src []byte, node *sitter.Node) int {
	count := 0
	if node.Kind() == "function_item" {
		if name := node.ChildByFieldName("name"); name != nil && text(src, name) == "main" {
			count++
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		count += countEntryPoints(src, node.Child(i))
	}
	return count
}

// innerAttributeLines collects crate-level `#![...]` lines. These must
// be promoted to file top when the rest of the source gets wrapped in a
// synthesized entry point.
func innerAttributeLines(source string) []string {
	var attrs []string
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#![") {
			attrs = append(attrs, trimmed)
		}
	}
	return attrs
}
