package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"surge/internal/astbundle"
	"surge/internal/checker"
	"surge/internal/config"
	"surge/internal/diagfmt"
	"surge/internal/driver"
	"surge/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check <bundle.msgpack>",
	Short: "Type-check a pre-bound AST bundle",
	Long: `check loads an astbundle.Bundle (see internal/astbundle) — a msgpack` +
		` snapshot of an already-parsed-and-bound NodeArena — runs internal/driver` +
		` over every file it contains, and reports the resulting diagnostics.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().String("config", "", "path to a tscheck.toml manifest ([check] table)")
	checkCmd.Flags().Int("context", 2, "source lines of context around each diagnostic")
	checkCmd.Flags().Bool("notes", true, "include diagnostic notes")
	checkCmd.Flags().Bool("fixes", false, "include fix suggestions")
	checkCmd.Flags().Bool("preview", false, "include before/after previews for fixes (requires --fixes)")
	checkCmd.Flags().Bool("positions", true, "include line/column positions in JSON output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}
	bundle, err := astbundle.Unmarshal(data)
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	builder, fileIDs, err := astbundle.Decode(fs, bundle)
	if err != nil {
		return err
	}

	cfg, err := loadCheckerConfig(cmd)
	if err != nil {
		return err
	}

	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	inputs := make([]driver.FileInput, len(bundle.Files))
	for i, f := range bundle.Files {
		inputs[i] = driver.FileInput{
			Path:    logicalPath(f.Path),
			Builder: builder,
			File:    fileIDs[i],
		}
	}

	prog, err := driver.Build(cmd.Context(), inputs, driver.Options{
		MaxDiagnostics: maxDiag,
		CheckerConfig:  cfg,
	})
	if err != nil {
		return fmt.Errorf("building program: %w", err)
	}

	if err := renderProgram(cmd, prog, fs); err != nil {
		return err
	}

	if prog.Bag.HasErrors() {
		// Diagnostics are already printed; suppress cobra's own error line.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

// loadCheckerConfig resolves --config into a checker.Config, falling back to
// checker.DefaultConfig() when the flag is unset (internal/config's tscheck.toml
// [check] table is the same manifest internal/project reads for module wiring).
func loadCheckerConfig(cmd *cobra.Command) (checker.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return checker.DefaultConfig(), nil
	}
	return config.Load(path)
}

func logicalPath(path string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		path = path[:i]
	}
	return path
}

func renderProgram(cmd *cobra.Command, prog *driver.Program, fs *source.FileSet) error {
	format, _ := cmd.Flags().GetString("format")
	colorMode, _ := cmd.Root().PersistentFlags().GetString("color")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	color := resolveColor(colorMode, os.Stdout)

	prog.Bag.Sort()

	switch format {
	case "json":
		notes, _ := cmd.Flags().GetBool("notes")
		fixes, _ := cmd.Flags().GetBool("fixes")
		preview, _ := cmd.Flags().GetBool("preview")
		positions, _ := cmd.Flags().GetBool("positions")
		return diagfmt.JSON(os.Stdout, prog.Bag, fs, diagfmt.JSONOpts{
			IncludePositions: positions,
			IncludeNotes:     notes,
			IncludeFixes:     fixes,
			IncludePreviews:  preview,
		})
	default:
		notes, _ := cmd.Flags().GetBool("notes")
		fixes, _ := cmd.Flags().GetBool("fixes")
		preview, _ := cmd.Flags().GetBool("preview")
		ctx, _ := cmd.Flags().GetInt("context")
		diagfmt.Pretty(os.Stdout, prog.Bag, fs, diagfmt.PrettyOpts{
			Color:       color,
			Context:     int8(ctx),
			ShowNotes:   notes,
			ShowFixes:   fixes,
			ShowPreview: preview,
		})
		if !quiet {
			fmt.Fprintln(os.Stdout)
			fmt.Fprintln(os.Stdout, diagfmt.Summary(prog.Bag, color))
		}
		return nil
	}
}
