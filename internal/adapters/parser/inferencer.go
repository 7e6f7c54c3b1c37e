package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
)

var _ ports.DependencyInferencer = (*Inferencer)(nil)

// Inferencer collects the externally resolvable package roots a source
// unit references.
type Inferencer struct {
	logger ports.Logger
}

// NewInferencer creates a new Inferencer.
func NewInferencer(logger ports.Logger) *Inferencer {
	return &Inferencer{logger: logger}
}

// Infer walks the full syntax tree, nested scopes included, and returns
// the ordered dependency set. Local module names and built-in roots are
// excluded; renames are tracked alongside the registry name because a
// local alias says nothing about the name the registry knows.
func (inf *Inferencer) Infer(unit *domain.SourceUnit) (*domain.DependencySet, error) {
	source := unit.Source
	tree := parse([]byte(source))
	defer tree.Close()
	root := tree.RootNode()

	if root.HasError() {
		// Fragments and expressions only parse inside an entry point.
		wrapped := wrapPrefix + source + "\n}\n"
		wtree := parse([]byte(wrapped))
		defer wtree.Close()
		source = wrapped
		root = wtree.RootNode()
	}

	v := &importVisitor{
		src:     []byte(source),
		deps:    domain.NewDependencySet(),
		modules: make(map[string]struct{}),
	}
	v.walk(root)

	result := domain.NewDependencySet()
	for _, dep := range v.deps.All() {
		name := dep.Name.String()
		if domain.IsBuiltinRoot(name) {
			continue
		}
		if _, local := v.modules[name]; local {
			continue
		}
		result.Add(dep)
	}

	inf.logger.Debug(fmt.Sprintf("inferred %d dependencies for %s", result.Len(), unit.Name.String()))
	return result, nil
}

// importVisitor descends into every node, function bodies and nested
// blocks included, so imports declared inside inner scopes are found.
// Dependencies are keyed by crate name; the scope an import appears in
// never changes which crate it names.
type importVisitor struct {
	src     []byte
	deps    *domain.DependencySet
	modules map[string]struct{}
}

func (v *importVisitor) walk(node *sitter.Node) {
	switch node.Kind() {
	case "use_declaration":
		v.visitUseClause(node.ChildByFieldName("argument"))
		return

	case "extern_crate_declaration":
		name := text(v.src, node.ChildByFieldName("name"))
		alias := text(v.src, node.ChildByFieldName("alias"))
		if name != "" {
			v.deps.Add(domain.Dependency{
				Name:   domain.NewInternedString(name),
				Rename: domain.NewInternedString(alias),
			})
		}
		return

	case "mod_item":
		if name := text(v.src, node.ChildByFieldName("name")); name != "" {
			v.modules[name] = struct{}{}
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		v.walk(node.Child(i))
	}
}

// visitUseClause handles every shape a use argument can take: a bare
// identifier, a scoped path, a rename, a grouped list, or a wildcard.
func (v *importVisitor) visitUseClause(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		v.add(text(v.src, node), "")

	case "scoped_identifier", "scoped_use_list":
		v.add(v.pathRoot(node), "")
		if list := node.ChildByFieldName("list"); list != nil && node.ChildByFieldName("path") == nil {
			// `use {a, b};` carries no path of its own.
			v.visitUseClause(list)
		}

	case "use_wildcard":
		// `use foo::*` has no path field; the path is the first child.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() == "::" || child.Kind() == "*" {
				continue
			}
			v.add(v.pathRoot(child), "")
			break
		}

	case "use_as_clause":
		root := v.pathRoot(node.ChildByFieldName("path"))
		alias := text(v.src, node.ChildByFieldName("alias"))
		v.add(root, alias)

	case "use_list":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			switch child.Kind() {
			case "{", "}", ",", "line_comment", "block_comment":
				continue
			}
			v.visitUseClause(child)
		}
	}
}

// pathRoot resolves the leftmost segment of a use path.
func (v *importVisitor) pathRoot(node *sitter.Node) string {
	for node != nil {
		path := node.ChildByFieldName("path")
		if path == nil {
			break
		}
		node = path
	}
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier", "crate", "self", "super":
		return text(v.src, node)
	default:
		return ""
	}
}

func (v *importVisitor) add(name, alias string) {
	if name == "" {
		return
	}
	v.deps.Add(domain.Dependency{
		Name:   domain.NewInternedString(name),
		Rename: domain.NewInternedString(alias),
	})
}
