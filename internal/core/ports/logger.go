package ports

// Logger defines the interface for logging. The variadic arguments are
// alternating key/value pairs in the log/slog convention.
//
//go:generate go run go.uber.org/mock/mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(err error)
}
