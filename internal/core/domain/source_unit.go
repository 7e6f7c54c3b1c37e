package domain

// SourceKind is the classification of an input source file.
type SourceKind int

const (
	// KindProgram is a complete program with its own entry point.
	KindProgram SourceKind = iota
	// KindFragment is headless code with no entry point, not evaluable as a single expression.
	KindFragment
	// KindExpression is a bare expression whose value can be rendered.
	KindExpression
)

// String returns the kind as a lowercase word for logging.
func (k SourceKind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindFragment:
		return "fragment"
	case KindExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// ValueKind is the heuristic classification of an expression's result type.
// It is computed from the syntax tree alone, without a type checker, so
// ValueUnknown is a legitimate outcome and defaults to rendering the value.
type ValueKind int

const (
	// ValueUnknown means the heuristic could not decide; treated as a value.
	ValueUnknown ValueKind = iota
	// ValueUnit means the expression trivially evaluates to the unit type.
	ValueUnit
	// ValueRendered means the expression produces a value worth printing.
	ValueRendered
)

// SourceUnit is the classified input source for one invocation.
// The Source field holds the text with any shebang already stripped;
// the shebang itself is retained so the pipeline can account for it
// without ever re-emitting it. A SourceUnit is immutable once classified.
type SourceUnit struct {
	// Name is the script stem used for the generated package and binary.
	Name InternedString

	// Source is the raw text with the shebang line removed.
	Source string

	// Shebang is the stripped leading "#!" line, empty if none was present.
	Shebang string

	// Kind is the classification result.
	Kind SourceKind

	// EntryPoints is the number of entry-point definitions found.
	EntryPoints int

	// InnerAttributes are crate-level `#![...]` lines that must sit at
	// file top in the generated tree rather than inside a wrapper body.
	InnerAttributes []string

	// Value is the void-vs-value heuristic result, meaningful only for
	// KindExpression units.
	Value ValueKind

	// TailStart and TailEnd delimit the trailing expression within
	// Source as byte offsets, meaningful only for KindExpression units.
	// Statements before the tail are kept verbatim; only the tail is
	// rendered.
	TailStart int
	TailEnd   int
}
