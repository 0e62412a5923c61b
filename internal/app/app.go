// Package app contains the root Bubble Tea model for the prompter TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/cuebird/cuebird/internal/config"
	"github.com/cuebird/cuebird/internal/container"
	"github.com/cuebird/cuebird/internal/content"
	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/pubsub"
	"github.com/cuebird/cuebird/internal/reading"
	"github.com/cuebird/cuebird/internal/service"
	"github.com/cuebird/cuebird/internal/sessions/domain"
	"github.com/cuebird/cuebird/internal/ui/markdown"
	"github.com/cuebird/cuebird/internal/watcher"
)

// baseTickInterval is the auto-scroll step at speed 1.0. The controller's
// speed multiplier divides it.
const baseTickInterval = 400 * time.Millisecond

// chromeHeight is the number of terminal rows used outside the
// viewport: title, help line, and the optional progress and status
// bars.
func (m *Model) chromeHeight() int {
	h := 2
	if m.cfg.UI.ShowProgress {
		h++
	}
	if m.cfg.UI.ShowStatusBar {
		h++
	}
	return h
}

type tickMsg time.Time

func tickCmd(speed float64) tea.Cmd {
	if speed <= 0 {
		speed = 1
	}
	return tea.Tick(time.Duration(float64(baseTickInterval)/speed), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the prompter root model. It resolves its collaborators from
// the composed container and owns the viewport, scroll ticker, and the
// optional file watcher and session recorder.
type Model struct {
	cfg  config.Config
	path string

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	progress progress.Model

	renderer *markdown.Renderer
	raw      string

	loader  service.FileLoader
	parser  service.ContentParser
	ctrl    service.ReadingController
	metrics service.ReadingMetrics

	// store is nil when session history is disabled or unavailable.
	store   service.SessionStore
	session *domain.ReadingSession

	fileWatcher     *watcher.Watcher
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[string]

	width    int
	height   int
	ready    bool
	showHelp bool
	status   string
}

// New builds the prompter model for the given script, resolving
// capabilities from the container. The session store is optional; every
// other capability is required.
func New(c *container.Container, cfg config.Config, path string) (*Model, error) {
	loader, err := container.Resolve[service.FileLoader](c, service.CapFileLoader)
	if err != nil {
		return nil, err
	}
	parser, err := container.Resolve[service.ContentParser](c, service.CapContentParser)
	if err != nil {
		return nil, err
	}
	ctrl, err := container.Resolve[service.ReadingController](c, service.CapReadingController)
	if err != nil {
		return nil, err
	}
	metrics, err := container.Resolve[service.ReadingMetrics](c, service.CapReadingMetrics)
	if err != nil {
		return nil, err
	}

	raw, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading script: %w", err)
	}

	wordCount := parser.WordCount(raw)
	if err := metrics.SetWordCount(wordCount); err != nil {
		return nil, err
	}

	m := &Model{
		cfg:      cfg,
		path:     path,
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
		raw:      raw,
		loader:   loader,
		parser:   parser,
		ctrl:     ctrl,
		metrics:  metrics,
	}

	// Session history is best effort. Missing capability means the
	// prompter runs without recording.
	store, err := container.Resolve[service.SessionStore](c, service.CapSessionStore)
	switch {
	case err == nil:
		m.store = store
		m.session = domain.NewReadingSession(path, wordCount)
	case errors.Is(err, container.ErrNotRegistered):
		log.Debug(log.CatUI, "session history disabled, no store registered")
	default:
		log.Warn(log.CatUI, "session store unavailable", "error", err)
	}

	if cfg.AutoReload {
		m.startWatcher()
	}

	return m, nil
}

// startWatcher wires the file watcher to the update loop. Failures are
// logged and the prompter runs without live reload.
func (m *Model) startWatcher() {
	w, err := watcher.New(watcher.DefaultConfig(m.path))
	if err != nil {
		log.Warn(log.CatUI, "file watching unavailable", "error", err)
		return
	}
	if err := w.Start(); err != nil {
		log.Warn(log.CatUI, "file watching unavailable", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.fileWatcher = w
	m.watcherCancel = cancel
	m.watcherListener = pubsub.NewContinuousListener(ctx, w.Broker())
	log.Debug(log.CatUI, "watching script", "path", m.path)
}

// Close releases the watcher. Call after the program exits.
func (m *Model) Close() {
	if m.watcherCancel != nil {
		m.watcherCancel()
	}
	if m.fileWatcher != nil {
		if err := m.fileWatcher.Stop(); err != nil {
			log.ErrorErr(log.CatUI, "stopping watcher", err)
		}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.ctrl.Speed())}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if m.ctrl.State() == service.ScrollActive {
			m.viewport.ScrollDown(1)
			m.syncProgress()
		}
		return m, tickCmd(m.ctrl.Speed())

	case pubsub.Event[string]:
		return m.handleWatcherEvent(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finishSession()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.toggle()

	case key.Matches(msg, m.keys.Stop):
		m.ctrl.Stop()
		m.metrics.StopReading()
		m.viewport.GotoTop()
		m.syncProgress()

	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
		m.syncProgress()

	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
		m.syncProgress()

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		m.jumpProgress()

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.jumpProgress()

	case key.Matches(msg, m.keys.Faster):
		m.ctrl.SetSpeed(m.ctrl.Speed() + reading.SpeedStep)

	case key.Matches(msg, m.keys.Slower):
		m.ctrl.SetSpeed(m.ctrl.Speed() - reading.SpeedStep)

	case key.Matches(msg, m.keys.Reload):
		m.reload()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// toggle drives the scroll state machine from the space bar.
func (m *Model) toggle() {
	switch m.ctrl.State() {
	case service.ScrollIdle:
		m.ctrl.Start()
		m.metrics.StartReading()
	case service.ScrollActive:
		m.ctrl.Pause()
		m.metrics.PauseReading()
	case service.ScrollPaused:
		m.ctrl.Resume()
		m.metrics.ResumeReading()
	case service.ScrollFinished:
		m.viewport.GotoTop()
		m.ctrl.Stop()
		m.ctrl.Start()
		m.metrics.StartReading()
		m.syncProgress()
	}
}

func (m *Model) handleWatcherEvent(event pubsub.Event[string]) (tea.Model, tea.Cmd) {
	switch event.Type {
	case pubsub.ContentChangedEvent:
		m.reload()
	case pubsub.ContentRemovedEvent:
		m.status = "script removed"
		log.Warn(log.CatUI, "watched script removed", "path", event.Payload)
	}
	if m.watcherListener != nil {
		return m, m.watcherListener.Listen()
	}
	return m, nil
}

// reload re-reads the script and re-renders, anchoring the viewport to
// the line where the old and new content diverge so edits near the
// reading position do not yank the view around.
func (m *Model) reload() {
	raw, err := m.loader.Load(m.path)
	if err != nil {
		m.status = "reload failed"
		log.ErrorErr(log.CatUI, "reloading script", err)
		return
	}

	anchor := content.AnchorLine(m.raw, raw)
	srcLines := strings.Count(raw, "\n") + 1

	m.raw = raw
	if err := m.metrics.SetWordCount(m.parser.WordCount(raw)); err != nil {
		log.ErrorErr(log.CatUI, "updating word count", err)
	}

	if m.ready {
		m.render()
		if srcLines > 0 {
			frac := float64(anchor) / float64(srcLines)
			target := int(frac * float64(m.viewport.TotalLineCount()))
			// Put the anchored line on the focus line rather than the
			// top edge of the viewport.
			target -= int(m.cfg.UI.FocusLine * float64(m.viewport.Height))
			if target < 0 {
				target = 0
			}
			m.viewport.SetYOffset(target)
		}
		m.syncProgress()
	}
	m.status = "reloaded"
}

// syncProgress pushes the viewport position into the controller and
// metrics. Hitting the bottom while scrolling finishes the session.
func (m *Model) syncProgress() {
	p := m.viewport.ScrollPercent()
	if p > 1 {
		p = 1
	}
	atEnd := m.viewport.AtBottom()
	if atEnd {
		p = 1
	}

	if err := m.ctrl.SetProgress(p); err != nil {
		log.ErrorErr(log.CatUI, "setting progress", err)
		return
	}
	if err := m.metrics.SetProgress(p); err != nil {
		log.ErrorErr(log.CatUI, "setting progress", err)
	}
	if atEnd && m.ctrl.State() == service.ScrollFinished {
		m.metrics.PauseReading()
	}
}

// jumpProgress is syncProgress for explicit jumps, which move away from
// the finished state instead of triggering it.
func (m *Model) jumpProgress() {
	p := m.viewport.ScrollPercent()
	if m.viewport.AtBottom() {
		p = 1
	}
	if err := m.ctrl.JumpTo(p); err != nil {
		log.ErrorErr(log.CatUI, "jumping", err)
		return
	}
	if err := m.metrics.SetProgress(p); err != nil {
		log.ErrorErr(log.CatUI, "setting progress", err)
	}
}

// finishSession records the session before quitting. Best effort.
func (m *Model) finishSession() {
	if m.store == nil || m.session == nil {
		return
	}
	m.session.Finish(m.ctrl.Progress(), m.metrics.AverageWPM(), m.metrics.Elapsed())
	if err := m.store.Save(m.session); err != nil {
		log.ErrorErr(log.CatUI, "saving session", err)
		return
	}
	log.Debug(log.CatUI, "session recorded", "guid", m.session.GUID)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.progress.Width = width

	viewHeight := height - m.chromeHeight()
	if viewHeight < 1 {
		viewHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewHeight
	}
	m.render()
}

// render fills the viewport with the styled script. The glamour
// renderer is width-bound, so resizes rebuild it.
func (m *Model) render() {
	if m.renderer == nil || m.renderer.Width() != m.width {
		r, err := markdown.New(m.width, m.cfg.Theme)
		if err != nil {
			log.ErrorErr(log.CatUI, "creating renderer", err)
			return
		}
		m.renderer = r
	}

	rendered, err := m.renderer.Render(m.raw)
	if err != nil {
		log.ErrorErr(log.CatUI, "rendering script", err)
		return
	}
	m.viewport.SetContent(rendered)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	stateStyle = lipgloss.NewStyle().Padding(0, 1)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.titleBar())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.cfg.UI.ShowProgress {
		b.WriteString(m.progress.ViewAs(m.ctrl.Progress()))
		b.WriteString("\n")
	}
	if m.cfg.UI.ShowStatusBar {
		b.WriteString(m.statusBar())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) titleBar() string {
	name := filepath.Base(m.path)
	// Leave room for the padding the title style adds.
	maxName := m.width - 2
	if maxName > 0 && runewidth.StringWidth(name) > maxName {
		name = truncate.StringWithTail(name, uint(maxName), "…")
	}
	return titleStyle.Render(name)
}

func (m *Model) statusBar() string {
	left := stateStyle.Render(string(m.ctrl.State())) +
		dimStyle.Render(fmt.Sprintf("%.1fx", m.ctrl.Speed()))

	right := dimStyle.Render(fmt.Sprintf("%s elapsed · %s left · %.0f wpm",
		formatDuration(m.metrics.Elapsed()),
		formatDuration(m.metrics.Remaining()),
		m.metrics.WordsPerMinute(m.ctrl.Speed()),
	))

	if m.status != "" {
		left += " " + dimStyle.Render(m.status)
	}

	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return truncate.String(left, uint(max(m.width, 0)))
	}
	return left + strings.Repeat(" ", gap) + right
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
