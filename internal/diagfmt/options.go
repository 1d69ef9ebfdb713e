package diagfmt

// PathMode controls how a diagnostic's file path is displayed.
type PathMode uint8

const (
	// PathModeAuto lets source.File.FormatPath pick relative vs absolute.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures Pretty's terminal rendering of a diag.Bag.
type PrettyOpts struct {
	Color       bool
	Context     int8 // source lines of context shown above/below the primary span
	PathMode    PathMode
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool
}

// JSONOpts configures JSON rendering of a diag.Bag.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	Max              int // truncate output after this many diagnostics; 0 = unlimited
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}
