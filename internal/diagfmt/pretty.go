package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"surge/internal/diag"
	"surge/internal/source"
)

// visualWidthUpTo computes the on-screen column width of s up to byteCol
// (1-based byte offset), expanding tabs to tabWidth and widening East Asian
// runes via go-runewidth so the underline below a diagnostic lines up under
// variable-width characters instead of assuming one byte == one column.
func visualWidthUpTo(s string, byteCol uint32, tabWidth int) int {
	if byteCol <= 1 {
		return 0
	}
	bytePos := 0
	visualPos := 0
	for _, r := range s {
		if bytePos >= int(byteCol-1) {
			break
		}
		if r == '\t' {
			visualPos = (visualPos + tabWidth) / tabWidth * tabWidth
		} else {
			visualPos += runewidth.RuneWidth(r)
		}
		bytePos += len(string(r))
	}
	return visualPos
}

// Pretty renders bag's diagnostics to w the way tsc renders its own
// terminal output: a `path:line:col: SEVERITY TSxxxx: message` header per
// diagnostic, the offending source line with a `^~~~` underline beneath the
// primary span, then any notes and fixes. Call bag.Sort() first for a
// deterministic, file-then-position order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	var (
		errorColor     = color.New(color.FgRed, color.Bold)
		warningColor   = color.New(color.FgYellow, color.Bold)
		infoColor      = color.New(color.FgCyan, color.Bold)
		pathColor      = color.New(color.FgWhite, color.Bold)
		codeColor      = color.New(color.FgMagenta)
		lineNumColor   = color.New(color.FgBlue)
		underlineColor = color.New(color.FgRed, color.Bold)
		previewLabel   = color.New(color.FgCyan, color.Bold)
		beforeColor    = color.New(color.FgRed)
		afterColor     = color.New(color.FgGreen)
		fixLabelColor  = infoColor
	)

	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !opts.Color

	context, err := safecast.Conv[uint32](opts.Context)
	if err != nil {
		panic(fmt.Errorf("context overflow: %w", err))
	}
	if context == 0 {
		context = 1
	}

	formatPath := func(f *source.File) string {
		switch opts.PathMode {
		case PathModeAbsolute:
			return f.FormatPath("absolute", "")
		case PathModeRelative:
			return f.FormatPath("relative", fs.BaseDir())
		case PathModeBasename:
			return f.FormatPath("basename", "")
		default:
			return f.FormatPath("auto", "")
		}
	}

	for idx, d := range bag.Items() {
		if idx > 0 {
			fmt.Fprintln(w)
		}

		lineColStart, lineColEnd := fs.Resolve(d.Primary)
		f := fs.Get(d.Primary.File)
		displayPath := formatPath(f)

		sevStr := d.Severity.String()
		var sevColored string
		switch d.Severity {
		case diag.SevError:
			sevColored = errorColor.Sprint(sevStr)
		case diag.SevWarning:
			sevColored = warningColor.Sprint(sevStr)
		case diag.SevInfo:
			sevColored = infoColor.Sprint(sevStr)
		default:
			sevColored = sevStr
		}

		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			pathColor.Sprint(displayPath),
			lineColStart.Line,
			lineColStart.Col,
			sevColored,
			codeColor.Sprint(d.Code.ID()),
			d.Message,
		)

		totalLines, err := safecast.Conv[uint32](len(f.LineIdx))
		if err != nil {
			panic(fmt.Errorf("total lines overflow: %w", err))
		}
		totalLines++
		if len(f.LineIdx) == 0 && len(f.Content) > 0 {
			totalLines = 1
		}

		startLine := lineColStart.Line
		if startLine > context {
			startLine = lineColStart.Line - context
		} else {
			startLine = 1
		}
		endLine := min(lineColStart.Line+context, totalLines)

		if startLine > 1 {
			fmt.Fprintln(w, "...")
		}

		const tabWidth = 8
		lineNumWidth := max(len(fmt.Sprintf("%d", endLine)), 3)

		for lineNum := startLine; lineNum <= endLine; lineNum++ {
			lineText := f.GetLine(lineNum)

			lineNumStr := fmt.Sprintf("%*d", lineNumWidth, lineNum)
			gutter := fmt.Sprintf("%s | ", lineNumColor.Sprint(lineNumStr))
			gutterLen := lineNumWidth + 3

			io.WriteString(w, gutter)
			io.WriteString(w, lineText)
			io.WriteString(w, "\n")

			if lineNum != lineColStart.Line {
				continue
			}

			startCol := lineColStart.Col
			endCol := lineColEnd.Col
			if lineColEnd.Line > lineColStart.Line {
				lenLineText, err := safecast.Conv[uint32](len(lineText))
				if err != nil {
					panic(fmt.Errorf("len line text overflow: %w", err))
				}
				endCol = lenLineText + 1
			}

			visualStart := visualWidthUpTo(lineText, startCol, tabWidth)
			visualEnd := visualWidthUpTo(lineText, endCol, tabWidth)

			var underline strings.Builder
			for range gutterLen {
				underline.WriteByte(' ')
			}
			for range visualStart {
				underline.WriteByte(' ')
			}
			spanLen := visualEnd - visualStart
			if spanLen <= 0 {
				underline.WriteByte('^')
			} else {
				for i := range spanLen {
					if i == spanLen-1 {
						underline.WriteByte('^')
					} else {
						underline.WriteByte('~')
					}
				}
			}
			fmt.Fprintln(w, underlineColor.Sprint(underline.String()))
		}

		if endLine < totalLines {
			fmt.Fprintln(w, "...")
		}

		if opts.ShowNotes && len(d.Notes) > 0 {
			for _, note := range d.Notes {
				nf := fs.Get(note.Span.File)
				notePath := formatPath(nf)
				noteStart, _ := fs.Resolve(note.Span)
				fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n",
					infoColor.Sprint("note"),
					pathColor.Sprint(notePath),
					noteStart.Line,
					noteStart.Col,
					note.Msg,
				)
			}
		}

		if opts.ShowFixes && len(d.Fixes) > 0 {
			fixes := append([]diag.Fix(nil), d.Fixes...)
			sort.SliceStable(fixes, func(i, j int) bool {
				fi, fj := fixes[i], fixes[j]
				if fi.IsPreferred != fj.IsPreferred {
					return fi.IsPreferred && !fj.IsPreferred
				}
				if fi.Applicability != fj.Applicability {
					return fi.Applicability < fj.Applicability
				}
				if fi.Kind != fj.Kind {
					return fi.Kind < fj.Kind
				}
				if fi.Title != fj.Title {
					return fi.Title < fj.Title
				}
				return fi.ID < fj.ID
			})

			ctx := diag.FixBuildContext{FileSet: fs}
			for i, fix := range fixes {
				resolved, err := fix.Resolve(ctx)
				if err != nil {
					fmt.Fprintf(w, "  %s #%d: %s (build error: %v)\n",
						fixLabelColor.Sprint("fix"), i+1, fix.Title, err)
					continue
				}

				meta := []string{resolved.Kind.String(), resolved.Applicability.String()}
				if resolved.IsPreferred {
					meta = append(meta, "preferred")
				}
				if resolved.ID != "" {
					meta = append(meta, "id="+resolved.ID)
				}
				fmt.Fprintf(w, "  %s #%d: %s (%s)\n",
					fixLabelColor.Sprint("fix"), i+1, resolved.Title, strings.Join(meta, ", "))

				if len(resolved.Edits) == 0 {
					fmt.Fprintf(w, "      (no edits)\n")
					continue
				}

				for _, edit := range resolved.Edits {
					ef := fs.Get(edit.Span.File)
					editPath := formatPath(ef)
					start, end := fs.Resolve(edit.Span)
					oldPreview, newPreview := edit.OldText, edit.NewText
					if len(oldPreview) > 32 {
						oldPreview = oldPreview[:29] + "..."
					}
					if len(newPreview) > 32 {
						newPreview = newPreview[:29] + "..."
					}
					metaParts := []string{}
					if edit.OldText != "" {
						metaParts = append(metaParts, fmt.Sprintf("expect=%q", oldPreview))
					}
					metaParts = append(metaParts, fmt.Sprintf("apply=%q", newPreview))
					fmt.Fprintf(w, "      %s:%d:%d-%d:%d %s\n",
						pathColor.Sprint(editPath), start.Line, start.Col, end.Line, end.Col,
						strings.Join(metaParts, ", "))

					if !opts.ShowPreview {
						continue
					}
					preview, err := buildFixEditPreview(fs, edit)
					if err != nil {
						fmt.Fprintf(w, "        preview unavailable: %v\n", err)
						continue
					}
					fmt.Fprintf(w, "      %s\n", previewLabel.Sprint("preview:"))
					printPreviewSection(w, "before:", "-", preview.before, beforeColor)
					printPreviewSection(w, "after:", "+", preview.after, afterColor)
				}
			}
		}
	}
}

func printPreviewSection(w io.Writer, label, marker string, lines []string, colorizer *color.Color) {
	if len(lines) == 0 {
		fmt.Fprintf(w, "        %s %s\n", label, colorizer.Sprint("<empty>"))
		return
	}
	fmt.Fprintf(w, "        %s\n", label)
	for _, line := range lines {
		display := line
		if display == "" {
			display = "(blank)"
		}
		fmt.Fprintf(w, "          %s %s\n", colorizer.Sprint(marker), colorizer.Sprint(display))
	}
}
