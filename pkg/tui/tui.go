// Package tui provides a terminal user interface for codecomposer
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/render"
	"github.com/james-see/codecomposer/pkg/token"
)

// Manuscript color scheme: ink on staff paper with a brass accent
var (
	brass     = lipgloss.Color("#D4A017")
	ink       = lipgloss.Color("#E8E6E3")
	staffGray = lipgloss.Color("#2B2B2B")
	rest      = lipgloss.Color("#7A7A7A")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brass).
			Background(staffGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(ink).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true).
			PaddingLeft(2)

	detailStyle = lipgloss.NewStyle().
			Foreground(rest).
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06C75")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(rest).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brass).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateComposing
	StateResult
)

// Config wires the TUI to a composer and optional history
type Config struct {
	Composer *composer.Composer
	History  *archive.Store
	Seed     int64
	Format   render.Format
}

// menuItem is one style choice, or exit when style is empty
type menuItem struct {
	style       string
	description string
}

// Model represents the TUI model
type Model struct {
	cfg          Config
	state        State
	items        []menuItem
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	result       *result
	err          error
	width        int
	height       int
}

// result describes a finished composition
type result struct {
	outputFile string
	id         string
	metadata   composer.Metadata
	bars       int
}

// composeDoneMsg signals composition completion
type composeDoneMsg struct {
	result *result
	err    error
}

// sourceTypes are the file extensions the lexer understands
var sourceTypes = []string{".go", ".c", ".h", ".py"}

// New creates a new TUI model
func New(cfg Config) Model {
	if cfg.Composer == nil {
		cfg.Composer = composer.New()
	}
	if cfg.Format == "" {
		cfg.Format = render.FormatMIDI
	}

	var items []menuItem
	for _, st := range cfg.Composer.Styles().Styles() {
		items = append(items, menuItem{
			style: st.Name,
			description: fmt.Sprintf("%s · %s %s · %s bass · %d bpm",
				st.Description, st.Key, st.Scale, st.BassPattern, st.Tempo),
		})
	}
	items = append(items, menuItem{description: "Exit the application"})

	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = sourceTypes
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(brass)

	return Model{
		cfg:        cfg,
		state:      StateMenu,
		items:      items,
		filePicker: fp,
		spinner:    s,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs every message while it is open
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateComposing
			return m, tea.Batch(m.spinner.Tick, m.compose())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case composeDoneMsg:
		m.state = StateResult
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(m.items)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.items[m.menuIndex].style == "" {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.result = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// selectedStyle returns the style under the menu cursor
func (m Model) selectedStyle() string {
	return m.items[m.menuIndex].style
}

func (m Model) compose() tea.Cmd {
	cfg := m.cfg
	path := m.selectedFile
	opts := composer.Options{Style: m.selectedStyle(), Seed: cfg.Seed}
	return func() tea.Msg {
		res, err := composeFile(context.Background(), cfg, path, opts)
		return composeDoneMsg{result: res, err: err}
	}
}

// composeFile lexes a source file, composes it and writes the rendering beside it
func composeFile(ctx context.Context, cfg Config, path string, opts composer.Options) (*result, error) {
	lang, err := token.LanguageForFile(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	tokens, err := token.Lex(string(src), lang)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize %s: %w", filepath.Base(path), err)
	}

	comp, err := cfg.Composer.Compose(ctx, tokens, opts)
	if err != nil {
		return nil, err
	}

	ext := map[render.Format]string{
		render.FormatMIDI: ".mid",
		render.FormatAlda: ".alda",
		render.FormatJSON: ".json",
		render.FormatTree: ".txt",
	}[cfg.Format]
	outputFile := strings.TrimSuffix(path, filepath.Ext(path)) + ext
	if err := render.WriteFile(comp, outputFile, render.VoicesBoth); err != nil {
		return nil, err
	}

	res := &result{outputFile: outputFile, metadata: comp.Metadata, bars: len(comp.Bars)}
	if cfg.History != nil {
		rec, err := cfg.History.Save(ctx, archive.SaveParams{
			Source:      path,
			Language:    string(lang),
			Options:     opts,
			Composition: comp,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save history: %w", err)
		}
		res.id = rec.ID
	}
	return res, nil
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(banner())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateComposing:
		s.WriteString(m.viewComposing())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT STYLE "))
	s.WriteString("\n\n")

	for i, item := range m.items {
		name := item.style
		if name == "" {
			name = "exit"
		}
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render("♪ " + name))
			s.WriteString("\n")
			s.WriteString(detailStyle.Render(item.description))
		} else {
			s.WriteString(menuStyle.Render("  " + name))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT SOURCE FOR %s ", strings.ToUpper(m.selectedStyle()))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to styles"))

	return s.String()
}

func (m Model) viewComposing() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" COMPOSING "))
	s.WriteString("\n\n")
	fmt.Fprintf(&s, "%s Composing %s in %s style...", m.spinner.View(), filepath.Base(m.selectedFile), m.selectedStyle())

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Composition failed: %s", m.err.Error())))
	} else if m.result != nil {
		md := m.result.metadata
		s.WriteString(titleStyle.Render(" DONE "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Composition written!"))
		s.WriteString("\n\n")
		fmt.Fprintf(&s, "Input:   %s\n", filepath.Base(m.selectedFile))
		fmt.Fprintf(&s, "Output:  %s\n", filepath.Base(m.result.outputFile))
		fmt.Fprintf(&s, "Harmony: %s %s, %s (%s)\n", md.Key, md.Scale, md.Progression, strings.Join(md.Chords, " "))
		fmt.Fprintf(&s, "Length:  %d tokens, %d bars at %d bpm", md.Tokens, m.result.bars, md.Tempo)
		if m.result.id != "" {
			fmt.Fprintf(&s, "\nSaved:   %s", m.result.id)
		}
		for _, w := range md.Warnings {
			s.WriteString("\n")
			s.WriteString(detailStyle.Render("warning: " + w))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func banner() string {
	logo := `
   ___         _        ___
  / __|___  __| |___   / __|___ _ __  _ __  ___ ___ ___ _ _
 | (__/ _ \/ _' / -_) | (__/ _ \ '  \| '_ \/ _ (_-</ -_) '_|
  \___\___/\__,_\___|  \___\___/_|_|_| .__/\___/__/\___|_|
                                     |_|
`
	return lipgloss.NewStyle().Foreground(brass).Render(logo)
}

// Run starts the TUI application
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
