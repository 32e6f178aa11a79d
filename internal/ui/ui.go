package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/medley/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunningView ViewState = iota
	ResultView
)

// Model represents the TUI application state for one conversion run.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *tasks.ConversionEngine
	jobID  string

	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan runCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	result *tasks.RunResult
	err    error
}

// NewModel creates a new TUI model for running one job through the engine.
func NewModel(ctx context.Context, engine *tasks.ConversionEngine, jobID string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return &Model{
		ctx:     ctx,
		view:    RunningView,
		engine:  engine,
		jobID:   jobID,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the conversion run and the spinner tick loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRun(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	done := make(chan runCompleteMsg, 1)
	go func() {
		result, err := m.engine.Run(m.ctx, m.jobID, m.progressChan)
		done <- runCompleteMsg{result: result, err: err}
		close(m.progressChan)
	}()
	m.done = done

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return <-m.done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRunning() string {
	title := styles.title.Render(fmt.Sprintf("Converting job %s", m.jobID))

	var phase string
	switch m.progress.Phase {
	case tasks.CaptureSource:
		phase = "Capturing source playlist..."
	case tasks.NormalizeSource:
		phase = fmt.Sprintf("Normalizing tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.SearchCandidates:
		phase = fmt.Sprintf("Searching candidates (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.SelectVideos:
		phase = fmt.Sprintf("Selecting videos (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.PromoteGold, tasks.AppendLedger:
		phase = "Promoting to gold and updating ledger..."
	case tasks.CreatePlaylist:
		phase = "Creating playlist on YouTube Music..."
	case tasks.SubmitBatch:
		phase = fmt.Sprintf("Submitting batches (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Starting..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	return fmt.Sprintf("%s\n%s %s\n%s\n\n%s",
		title, m.spinner.View(), phase,
		styles.help.Render(m.progress.Message), helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s",
			styles.err.Render(fmt.Sprintf("Conversion failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.success.Render("✓ Conversion Complete!")
	info := fmt.Sprintf(
		"\nTracks: %d\nMatched: %d\nUnresolved: %d\nPlaylist: %s (%d videos in %d batches)",
		m.result.Normalize.Inserted,
		m.result.Selection.Selected,
		m.result.Selection.Unresolved,
		m.result.Playlist.PlaylistID,
		m.result.Playlist.Submitted,
		m.result.Playlist.Batches,
	)

	var skipped string
	if m.result.Playlist.Unmapped > 0 {
		skipped = "\n" + styles.warning.Render(
			fmt.Sprintf("%d tracks had no mapping and were left out", m.result.Playlist.Unmapped))
	}

	return fmt.Sprintf("%s%s%s\n\n%s", title, info, skipped, helpView)
}
