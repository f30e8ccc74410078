// Package tui provides a terminal player for Standard MIDI Files
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/james-see/smfplay/pkg/player"
	"github.com/james-see/smfplay/pkg/smf"
)

// State represents the current TUI state
type State int

const (
	StatePicker State = iota
	StateLoading
	StatePlaying
	StateResult
)

const (
	recentEvents = 8
	refreshEvery = 200 * time.Millisecond
)

// Model represents the TUI model
type Model struct {
	state      State
	filePicker filepicker.Model
	spinner    spinner.Model
	progress   progress.Model

	session *player.Session
	events  chan player.Dispatched
	cfg     player.Config
	logger  *log.Logger

	selectedFile string
	file         *smf.File
	duration     time.Duration
	started      time.Time
	elapsed      time.Duration
	recent       []string
	stopped      bool
	err          error
	width        int
	height       int
}

type playbackReadyMsg struct {
	file     *smf.File
	duration time.Duration
}

type playbackDoneMsg struct {
	err error
}

type loadFailedMsg struct {
	err error
}

type dispatchedMsg player.Dispatched

type refreshMsg time.Time

// New creates a new TUI model playing through sink. The session still has to
// be opened with Open before a file can be played.
func New(sink player.Sink, cfg player.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fp := filepicker.New()
	fp.AllowedTypes = smf.Extensions
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(acidGreen)

	events := make(chan player.Dispatched, 64)
	observe := func(d player.Dispatched) {
		select {
		case events <- d:
		default: // the UI only shows the latest events
		}
	}
	opts := append(cfg.SchedulerOptions(logger), player.WithObserver(observe))

	return Model{
		state:      StatePicker,
		filePicker: fp,
		spinner:    s,
		progress:   progress.New(progress.WithGradient("#39FF14", "#FFFF00")),
		session:    player.NewSession(sink, opts...),
		events:     events,
		cfg:        cfg,
		logger:     logger,
	}
}

// Open loads the instrument bank into the sink.
func (m Model) Open(bank string) error {
	return m.session.Open(bank)
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.filePicker.Init(), m.spinner.Tick, listen(m.events))
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.Height = msg.Height - 12
		m.progress.Width = max(msg.Width-12, 10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dispatchedMsg:
		m.recent = append(m.recent, describe(player.Dispatched(msg)))
		if len(m.recent) > recentEvents {
			m.recent = m.recent[len(m.recent)-recentEvents:]
		}
		return m, listen(m.events)

	case refreshMsg:
		if m.state != StatePlaying {
			return m, nil
		}
		m.elapsed = time.Time(msg).Sub(m.started)
		return m, refresh()

	case playbackReadyMsg:
		m.state = StatePlaying
		m.file = msg.file
		m.duration = msg.duration
		m.started = time.Now()
		m.elapsed = 0
		m.recent = nil
		return m, tea.Batch(m.play(msg.file), refresh())

	case loadFailedMsg:
		m.state = StateResult
		m.err = msg.err
		return m, nil

	case playbackDoneMsg:
		m.state = StateResult
		m.stopped = errors.Is(msg.err, context.Canceled)
		if !m.stopped {
			m.err = msg.err
		}
		return m, nil
	}

	switch m.state {
	case StatePicker:
		return m.updatePicker(msg)
	case StatePlaying:
		return m.updatePlaying(msg)
	case StateResult:
		return m.updateResult(msg)
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	// The file picker needs every other message, including its own reads.
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.selectedFile = path
		m.state = StateLoading
		return m, tea.Batch(m.spinner.Tick, load(path, m.cfg, m.logger))
	}
	return m, cmd
}

func (m Model) updatePlaying(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "esc", "s":
		m.session.Stop()
	case "q", "ctrl+c":
		m.session.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "enter", "esc":
		m.state = StatePicker
		m.err = nil
		m.stopped = false
		m.selectedFile = ""
		m.file = nil
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// load parses path and computes its duration.
func load(path string, cfg player.Config, logger *log.Logger) tea.Cmd {
	return func() tea.Msg {
		f, err := smf.ReadFile(path, cfg.ParseOptions(logger)...)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return playbackReadyMsg{
			file:     f,
			duration: player.Merge(f.Tracks).Duration(f.Division),
		}
	}
}

// play blocks until the session finishes; tea runs it on its own goroutine.
func (m Model) play(f *smf.File) tea.Cmd {
	return func() tea.Msg {
		return playbackDoneMsg{err: m.session.Play(context.Background(), f)}
	}
}

func listen(events <-chan player.Dispatched) tea.Cmd {
	return func() tea.Msg {
		return dispatchedMsg(<-events)
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func describe(d player.Dispatched) string {
	return fmt.Sprintf("%8s  trk %-2d  %s", d.At.Truncate(time.Millisecond), d.Track, d.Event)
}

// percent returns playback progress in [0, 1].
func (m Model) percent() float64 {
	if m.duration <= 0 {
		return 1
	}
	p := float64(m.elapsed) / float64(m.duration)
	return min(max(p, 0), 1)
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StatePicker:
		s.WriteString(m.viewPicker())
	case StateLoading:
		s.WriteString(boxStyle.Render(fmt.Sprintf("%s Loading %s...", m.spinner.View(), filepath.Base(m.selectedFile))))
	case StatePlaying:
		s.WriteString(m.viewPlaying())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help()))
	return s.String()
}

func (m Model) help() string {
	switch m.state {
	case StatePlaying:
		return "s/esc: stop • q: quit"
	case StateResult:
		return "enter: pick another file • q: quit"
	default:
		return "↑/↓: navigate • enter: play • q: quit"
	}
}

func (m Model) viewPicker() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	return s.String()
}

func (m Model) viewPlaying() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" PLAYING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	if m.file != nil {
		s.WriteString(statusStyle.Render(fmt.Sprintf("  %d tracks • %d ticks/quarter • %s",
			len(m.file.Tracks), m.file.Division, m.cfg.Strategy)))
		s.WriteString("\n\n")
	}
	s.WriteString(m.progress.ViewAs(m.percent()))
	s.WriteString(fmt.Sprintf("\n%s / %s\n\n",
		m.elapsed.Truncate(time.Second), m.duration.Truncate(time.Second)))

	for _, line := range m.recent {
		s.WriteString(eventStyle.Render(line))
		s.WriteString("\n")
	}
	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Playback failed: %s", m.err.Error())))
	case m.stopped:
		s.WriteString(titleStyle.Render(" STOPPED "))
		s.WriteString("\n\n")
		s.WriteString(statusStyle.Render(fmt.Sprintf("■ Stopped %s", filepath.Base(m.selectedFile))))
	default:
		s.WriteString(titleStyle.Render(" DONE "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render(fmt.Sprintf("✓ Finished %s", filepath.Base(m.selectedFile))))
	}
	return boxStyle.Render(s.String())
}

// Run opens the session with bank and starts the TUI application
func Run(sink player.Sink, bank string, cfg player.Config, logger *log.Logger) error {
	m := New(sink, cfg, logger)
	if err := m.Open(bank); err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
