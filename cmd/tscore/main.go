// Command tscore is the TypeScript-compatible structural type checker's CLI:
// it drives internal/driver over a pre-bound AST bundle (internal/astbundle)
// and renders the resulting diag.Bag, replacing the teacher's cmd/surge for
// this module's domain. Parsing .ts source text is out of scope (spec.md:
// "Consumed from the parser: an immutable NodeArena..."); tscore's input is
// already the arena a parser would have produced.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const versionString = "tscore 0.1.0"

var rootCmd = &cobra.Command{
	Use:     "tscore",
	Short:   "TypeScript-compatible structural type checker",
	Long:    `tscore checks a pre-bound AST bundle against TypeScript's structural type system.`,
	Version: versionString,
}

var (
	timeoutCancel   context.CancelFunc
	timeoutDuration time.Duration
)

func main() {
	rootCmd.PersistentPreRunE = applyTimeout
	rootCmd.PersistentPostRun = cleanupTimeout

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress the closing summary line")
	rootCmd.PersistentFlags().Int("max-diagnostics", 256, "maximum number of diagnostics to collect")
	rootCmd.PersistentFlags().Int("timeout", 30, "command timeout in seconds")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveColor turns the --color flag and the output stream's terminal-ness
// into a single on/off decision, the way the teacher's diagnose.go does.
func resolveColor(mode string, out *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(out)
	}
}

func applyTimeout(cmd *cobra.Command, _ []string) error {
	secs, err := cmd.Root().PersistentFlags().GetInt("timeout")
	if err != nil {
		return fmt.Errorf("failed to read timeout flag: %w", err)
	}
	if secs <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}

	timeoutDuration = time.Duration(secs) * time.Second
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutDuration)
	timeoutCancel = cancel

	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			fmt.Fprintf(os.Stderr, "tscore: command timed out after %s\n", timeoutDuration)
			os.Exit(1)
		}
	}()

	return nil
}

func cleanupTimeout(*cobra.Command, []string) {
	if timeoutCancel != nil {
		timeoutCancel()
		timeoutCancel = nil
	}
}
