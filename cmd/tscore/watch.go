package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"surge/internal/astbundle"
	"surge/internal/checker"
	"surge/internal/diagfmt"
	"surge/internal/driver"
	"surge/internal/source"
)

var watchCmd = &cobra.Command{
	Use:   "watch <bundle.msgpack>",
	Short: "Re-check a bundle each time it changes on disk",
	Long: `watch polls a bundle file's mtime and re-runs check whenever it changes,` +
		` rendering a live Bubble Tea view of the last run's diagnostic summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 500*time.Millisecond, "poll interval")
	watchCmd.Flags().String("config", "", "path to a tscheck.toml manifest ([check] table)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	interval, _ := cmd.Flags().GetDuration("interval")
	cfgPath, _ := cmd.Flags().GetString("config")

	var cfg checker.Config
	if cfgPath == "" {
		cfg = checker.DefaultConfig()
	} else {
		var err error
		cfg, err = loadCheckerConfig(cmd)
		if err != nil {
			return err
		}
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	m := newWatchModel(path, interval, cfg, width)
	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

type watchResult struct {
	bag     *diagResult
	err     error
	modTime time.Time
}

type diagResult struct {
	summary string
}

type tickMsg time.Time
type resultMsg watchResult

type watchModel struct {
	path     string
	interval time.Duration
	cfg      checker.Config
	width    int
	spinner  spinner.Model
	lastMod  time.Time
	last     *diagResult
	err      error
	runs     int
}

func newWatchModel(path string, interval time.Duration, cfg checker.Config, width int) *watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &watchModel{path: path, interval: interval, cfg: cfg, width: width, spinner: sp}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m *watchModel) poll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *watchModel) recheck() tea.Cmd {
	path, cfg := m.path, m.cfg
	return func() tea.Msg {
		info, err := os.Stat(path)
		if err != nil {
			return resultMsg{err: err}
		}
		res, err := runBundleCheck(path, cfg)
		return resultMsg{bag: res, err: err, modTime: info.ModTime()}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		info, err := os.Stat(m.path)
		if err != nil {
			m.err = err
			return m, m.poll()
		}
		if !info.ModTime().After(m.lastMod) && m.runs > 0 {
			return m, m.poll()
		}
		return m, m.recheck()
	case resultMsg:
		m.runs++
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.last = msg.bag
			m.lastMod = msg.modTime
		}
		return m, m.poll()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *watchModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("watching %s", m.path))
	body := fmt.Sprintf("%s %s waiting for changes (%d runs so far)", m.spinner.View(), header, m.runs)
	if m.err != nil {
		return body + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()) + "\n"
	}
	if m.last != nil {
		return body + "\n" + m.last.summary + "\n"
	}
	return body + "\n"
}

// runBundleCheck decodes and checks the bundle at path once, the same path
// runCheck's RunE follows, returning a rendered summary instead of writing
// straight to stdout.
func runBundleCheck(path string, cfg checker.Config) (*diagResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	bundle, err := astbundle.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	fs := source.NewFileSet()
	builder, fileIDs, err := astbundle.Decode(fs, bundle)
	if err != nil {
		return nil, err
	}

	inputs := make([]driver.FileInput, len(bundle.Files))
	for i, f := range bundle.Files {
		inputs[i] = driver.FileInput{Path: logicalPath(f.Path), Builder: builder, File: fileIDs[i]}
	}

	prog, err := driver.Build(context.Background(), inputs, driver.Options{CheckerConfig: cfg})
	if err != nil {
		return nil, err
	}
	prog.Bag.Sort()
	return &diagResult{summary: diagfmt.Summary(prog.Bag, true)}, nil
}
