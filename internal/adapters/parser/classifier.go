package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Classifier = (*Classifier)(nil)

// Classifier decides whether a source file is a complete program, a
// headless fragment, or a bare expression.
type Classifier struct {
	logger ports.Logger
}

// NewClassifier creates a new Classifier.
func NewClassifier(logger ports.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify parses raw and returns the classified SourceUnit. The input
// is never mutated; the shebang, if any, is stripped into its own field.
func (c *Classifier) Classify(name string, raw []byte, multiMain bool) (*domain.SourceUnit, error) {
	shebang, source := splitShebang(string(raw))
	rowOffset := 0
	if shebang != "" {
		rowOffset = 1
	}

	unit := &domain.SourceUnit{
		Name:    domain.NewInternedString(name),
		Source:  source,
		Shebang: shebang,
	}

	tree := parse([]byte(source))
	defer tree.Close()
	root := tree.RootNode()

	if !root.HasError() {
		if mains := countEntryPoints([]byte(source), root); mains > 0 {
			if mains > 1 && !multiMain {
				return nil, zerr.With(zerr.With(
					zerr.Wrap(domain.ErrAmbiguousEntryPoint, "only one entry point allowed by default"),
					"count", mains), "file", name)
			}
			unit.Kind = domain.KindProgram
			unit.EntryPoints = mains
			c.logger.Debug(fmt.Sprintf("classified %s as program", name))
			return unit, nil
		}
	}

	// No entry point, or not a well-formed file at all. The grammar is
	// statement-tolerant at top level, so even clean zero-main sources
	// go through the wrapped parse: it decides between a fragment and a
	// trailing expression, and a body-position reparse is the only way
	// to see which.
	wrapped := wrapPrefix + source + "\n}\n"
	wtree := parse([]byte(wrapped))
	defer wtree.Close()
	wroot := wtree.RootNode()

	if wroot.HasError() {
		if !root.HasError() {
			// Valid as a file, invalid as a body: items only.
			unit.Kind = domain.KindFragment
			unit.InnerAttributes = innerAttributeLines(source)
			c.logger.Debug(fmt.Sprintf("classified %s as fragment", name))
			return unit, nil
		}
		loc := firstError(root, rowOffset)
		return nil, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrSyntax, "source is not parsable"),
			"location", loc), "file", name)
	}

	// Entry points found inside the fragment itself; the synthesized
	// wrapper accounts for exactly one.
	unit.EntryPoints = countEntryPoints([]byte(wrapped), wroot) - 1
	unit.InnerAttributes = innerAttributeLines(source)

	if expr := trailingExpression(wroot); expr != nil {
		unit.Kind = domain.KindExpression
		unit.Value = classifyValue([]byte(wrapped), expr)
		// Map the span from the wrapped text back onto the source.
		unit.TailStart = int(expr.StartByte()) - len(wrapPrefix)
		unit.TailEnd = int(expr.EndByte()) - len(wrapPrefix)
		c.logger.Debug(fmt.Sprintf("classified %s as expression (%v)", name, unit.Value))
		return unit, nil
	}

	unit.Kind = domain.KindFragment
	c.logger.Debug(fmt.Sprintf("classified %s as fragment", name))
	return unit, nil
}

// wrapPrefix is prepended when re-parsing fragments as a function body.
// Offsets into the wrapped tree translate back by its length.
const wrapPrefix = "fn main() {\n"

// trailingExpression returns the last node of the wrapped body if it is
// a bare expression rather than a statement, meaning the unit produces
// a value when the preceding statements have run.
func trailingExpression(root *sitter.Node) *sitter.Node {
	fn := firstChildOfKind(root, "function_item")
	if fn == nil {
		return nil
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var last *sitter.Node
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		switch child.Kind() {
		case "{", "}", "line_comment", "block_comment", "inner_attribute_item":
			continue
		}
		last = child
	}
	if last == nil {
		return nil
	}
	switch last.Kind() {
	case "expression_statement", "let_declaration", "empty_statement":
		return nil
	}
	if strings.HasSuffix(last.Kind(), "_item") || strings.HasSuffix(last.Kind(), "_declaration") {
		return nil
	}
	return last
}

func firstChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}

// statementMacros trivially evaluate to unit when used as expressions.
var statementMacros = map[string]struct{}{
	"println":      {},
	"print":        {},
	"eprintln":     {},
	"eprint":       {},
	"writeln":      {},
	"write":        {},
	"assert":       {},
	"assert_eq":    {},
	"assert_ne":    {},
	"debug_assert": {},
	"panic":        {},
	"todo":         {},
}

// classifyValue is the void-vs-value heuristic. It special-cases
// trivially unit-typed shapes and otherwise stays at ValueUnknown, which
// the transformer treats as "render". There is no type checker here.
func classifyValue(src []byte, expr *sitter.Node) domain.ValueKind {
	switch expr.Kind() {
	case "unit_expression",
		"assignment_expression",
		"compound_assignment_expr",
		"while_expression",
		"for_expression",
		"return_expression",
		"break_expression",
		"continue_expression":
		return domain.ValueUnit

	case "if_expression":
		// An if without an else is unit-typed; with an else we would
		// need the branch types.
		if expr.ChildByFieldName("alternative") == nil {
			return domain.ValueUnit
		}
		return domain.ValueUnknown

	case "macro_invocation":
		name := text(src, expr.ChildByFieldName("macro"))
		if _, ok := statementMacros[name]; ok {
			return domain.ValueUnit
		}
		return domain.ValueUnknown

	case "integer_literal", "float_literal", "string_literal",
		"raw_string_literal", "char_literal", "boolean_literal",
		"binary_expression", "unary_expression", "tuple_expression",
		"array_expression", "struct_expression", "range_expression",
		"closure_expression":
		return domain.ValueRendered

	default:
		return domain.ValueUnknown
	}
}
