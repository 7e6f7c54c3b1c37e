package ports

import "context"

// Runner launches a built artifact as a child process with the caller's
// stdio wired through.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type Runner interface {
	// Run executes the binary with the given script-level arguments and
	// returns its exit code. A non-zero exit code is not an error; the
	// error return covers launch failures only.
	Run(ctx context.Context, binary string, args []string) (int, error)
}
