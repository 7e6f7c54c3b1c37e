package ports

import "go.trai.ch/rsx/internal/core/domain"

// Classifier decides what shape of source it was handed. It is a pure
// pass over the syntax tree and never mutates the input.
//
//go:generate go run go.uber.org/mock/mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
type Classifier interface {
	// Classify parses raw and returns the classified unit. multiMain
	// permits more than one entry point. Unparsable source fails with
	// a location-annotated syntax error, never a silent Fragment.
	Classify(name string, raw []byte, multiMain bool) (*domain.SourceUnit, error)
}

// DependencyInferencer walks the syntax tree and collects externally
// resolvable package roots. Zero dependencies is a valid result.
type DependencyInferencer interface {
	Infer(unit *domain.SourceUnit) (*domain.DependencySet, error)
}

// MetadataExtractor parses the optional embedded metadata block out of
// the comment region at the head of the source.
type MetadataExtractor interface {
	// Extract returns nil when no metadata block is present.
	Extract(unit *domain.SourceUnit) (*domain.EmbeddedMetadata, error)
}
