// Package commands implements the CLI commands for the rsx script runner.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.trai.ch/rsx/internal/app"
	"go.trai.ch/zerr"
)

// verbositySetter is satisfied by loggers whose level can be adjusted
// after construction.
type verbositySetter interface {
	SetVerbosity(verbose, quiet bool)
}

// CLI represents the command line interface for rsx.
type CLI struct {
	components *app.Components
	rootCmd    *cobra.Command

	// exitCode is the script's own exit code, captured so the process
	// can pass it through after cobra unwinds.
	exitCode int
}

// New creates a new CLI instance with the given components.
func New(c *app.Components) *CLI {
	cli := &CLI{components: c}

	rootCmd := &cobra.Command{
		Use:   "rsx [flags] <script> [-- args...]",
		Short: "Build and run scripts straight from source",
		Long: `rsx builds a script into a cached executable and runs it.

The input may be a complete program, a headless fragment, or a bare
expression; fragments and expressions are wrapped into a runnable
program automatically. Dependencies are inferred from the source and
resolved against the registry, or pinned in an embedded metadata block.

Pass "-" as the script to read from stdin. Arguments after "--" go to
the script untouched.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cli.runScript,
	}

	rootCmd.Flags().BoolP("force", "f", false, "Rebuild even on a cache hit")
	rootCmd.Flags().Bool("release", false, "Build with the release profile")
	rootCmd.Flags().BoolP("multimain", "m", false, "Allow multiple entry points")
	rootCmd.Flags().StringP("expr", "e", "", "Evaluate an inline expression instead of a script file")
	rootCmd.Flags().Bool("no-run", false, "Build without running")

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress everything below warnings")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if setter, ok := c.Logger.(verbositySetter); ok {
			verbose, _ := cmd.Flags().GetBool("verbose")
			quiet, _ := cmd.Flags().GetBool("quiet")
			setter.SetVerbosity(verbose, quiet)
		}
	}

	cli.rootCmd = rootCmd
	rootCmd.AddCommand(cli.newCleanCmd())
	rootCmd.AddCommand(cli.newVersionCmd())

	return cli
}

func (c *CLI) runScript(cmd *cobra.Command, args []string) error {
	scriptArgs := []string{}
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		scriptArgs = args[at:]
		args = args[:at]
	}

	req := app.Request{Args: scriptArgs}
	req.Force, _ = cmd.Flags().GetBool("force")
	req.Release, _ = cmd.Flags().GetBool("release")
	req.MultiMain, _ = cmd.Flags().GetBool("multimain")
	req.NoRun, _ = cmd.Flags().GetBool("no-run")
	req.Expr, _ = cmd.Flags().GetString("expr")

	switch {
	case req.Expr != "":
		if len(args) > 0 {
			return zerr.New("an inline expression takes no script argument")
		}
	case len(args) == 1:
		req.ScriptPath = args[0]
	case len(args) == 0:
		_ = cmd.Help()
		return nil
	default:
		return zerr.With(zerr.New("exactly one script expected"), "got", len(args))
	}

	code, err := c.components.App.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	c.exitCode = code
	return nil
}

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clear the build cache",
		Long: `Clear the build cache. Without flags both tiers are removed:
the shared dependency areas and the cached executables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, _ := cmd.Flags().GetBool("deps")
			bin, _ := cmd.Flags().GetBool("bin")
			if !deps && !bin {
				deps, bin = true, true
			}
			return c.components.App.Clean(deps, bin)
		},
	}
	cmd.Flags().Bool("deps", false, "Clear only the shared dependency tier")
	cmd.Flags().Bool("bin", false, "Clear only the executable tier")
	return cmd
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// ExitCode returns the script's exit code after a successful Execute.
func (c *CLI) ExitCode() int {
	return c.exitCode
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}
