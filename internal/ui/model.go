package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/store"
	"github.com/desertthunder/photon/internal/tasks"
)

const (
	// SaveResetDelay is how long the save label shows its outcome.
	SaveResetDelay = 3 * time.Second
	// MotorStep is the motor speed change per keypress.
	MotorStep = 10
)

var errNoSaver = errors.New("no device connection")

// Saver commits the device's current state to flash.
type Saver interface {
	Save(ctx context.Context) (*models.RelayReply, error)
}

// SaveState is the save label's state machine.
type SaveState int

const (
	SaveIdle SaveState = iota
	Saving
	Saved
	SaveFailed
)

func (s SaveState) String() string {
	switch s {
	case Saving:
		return "Saving…"
	case Saved:
		return "Saved!"
	case SaveFailed:
		return "Failed"
	default:
		return "Save to device"
	}
}

// Model represents the dashboard state.
type Model struct {
	ctx      context.Context
	store    *store.Store
	saver    Saver
	progress <-chan tasks.ProgressUpdate
	width    int
	height   int
	tracks   list.Model
	save     SaveState
	saveGen  int
	saveErr  error
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a dashboard bound to st. progress may be nil.
func NewModel(ctx context.Context, st *store.Store, saver Saver, progress <-chan tasks.ProgressUpdate) *Model {
	tracks := list.New(trackItems(""), list.NewDefaultDelegate(), 40, 14)
	tracks.Title = "Tracks"
	tracks.SetShowHelp(false)
	tracks.SetShowStatusBar(false)
	tracks.SetFilteringEnabled(false)

	m := &Model{
		ctx:      ctx,
		store:    st,
		saver:    saver,
		progress: progress,
		tracks:   tracks,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.refreshTracks(true)
	return m
}

// Init resends both profiles and starts listening for sync progress.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.syncAll(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.tracks.SetSize(max(msg.Width-4, 20), max(msg.Height-16, 6))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.store.StopPreview()
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggle):
		next := m.store.ActiveLabel().Other()
		if _, err := m.store.SetActiveLabel(m.ctx, next); err != nil {
			m.err = err
			return m, nil
		}
		m.refreshTracks(true)

	case key.Matches(msg, m.keys.left):
		m.step(-1)

	case key.Matches(msg, m.keys.right):
		m.step(1)

	case key.Matches(msg, m.keys.faster):
		m.store.MutateActive(m.ctx, models.SetMotorSpeed(m.store.Active().MotorSpeed+MotorStep))

	case key.Matches(msg, m.keys.slower):
		m.store.MutateActive(m.ctx, models.SetMotorSpeed(m.store.Active().MotorSpeed-MotorStep))

	case key.Matches(msg, m.keys.up):
		m.tracks.CursorUp()

	case key.Matches(msg, m.keys.down):
		m.tracks.CursorDown()

	case key.Matches(msg, m.keys.enter):
		m.toggleTrack()

	case key.Matches(msg, m.keys.preview):
		if item, ok := m.tracks.SelectedItem().(trackItem); ok {
			return m, m.preview(item.track.ID)
		}

	case key.Matches(msg, m.keys.stop):
		if err := m.store.StopPreview(); err != nil {
			m.err = err
		}

	case key.Matches(msg, m.keys.save):
		if m.save == Saving {
			return m, nil
		}
		m.save = Saving
		m.saveErr = nil
		m.saveGen++
		return m, m.saveToDevice(m.saveGen)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		if update.Phase != tasks.Queued {
			m.status = update.Message
		}
		return m, m.waitForProgress()

	case MsgSaveComplete:
		data := msg.data.(struct {
			gen int
			err error
		})
		if data.gen != m.saveGen {
			return m, nil
		}
		if data.err != nil {
			m.save = SaveFailed
			m.saveErr = data.err
		} else {
			m.save = Saved
		}
		gen := data.gen
		return m, tea.Tick(SaveResetDelay, func(time.Time) tea.Msg { return saveResetMsg(gen) })

	case MsgSaveReset:
		if msg.data.(int) == m.saveGen && m.save != Saving {
			m.save = SaveIdle
			m.saveErr = nil
		}
		return m, nil

	case MsgPreviewDone:
		data := msg.data.(struct {
			trackID string
			err     error
		})
		m.err = data.err
		if data.err == nil {
			m.status = fmt.Sprintf("Previewing %s", models.TrackName(data.trackID))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) step(delta int) {
	colors := m.store.Colors()
	m.store.MutateActive(m.ctx, colors.Step(m.store.Active(), delta))
}

// toggleTrack selects the highlighted track, or clears it when it is already selected.
func (m *Model) toggleTrack() {
	item, ok := m.tracks.SelectedItem().(trackItem)
	if !ok {
		return
	}
	id := item.track.ID
	if m.store.Active().SelectedTrack == id {
		id = ""
	}
	m.store.MutateActive(m.ctx, models.SetTrack(id))
	m.refreshTracks(false)
}

// refreshTracks re-marks the active selection. With moveCursor the cursor jumps to it.
func (m *Model) refreshTracks(moveCursor bool) {
	selected := m.store.Active().SelectedTrack
	cursor := m.tracks.Index()
	m.tracks.SetItems(trackItems(selected))
	if i := trackIndex(selected); moveCursor && i >= 0 {
		cursor = i
	}
	m.tracks.Select(cursor)
}

func (m *Model) syncAll() tea.Cmd {
	return func() tea.Msg {
		m.store.SyncAll(m.ctx)
		return nil
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progress == nil {
		return nil
	}
	ch := m.progress
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) saveToDevice(gen int) tea.Cmd {
	return func() tea.Msg {
		if m.saver == nil {
			return saveCompleteMsg(gen, errNoSaver)
		}
		_, err := m.saver.Save(m.ctx)
		return saveCompleteMsg(gen, err)
	}
}

func (m *Model) preview(trackID string) tea.Cmd {
	return func() tea.Msg {
		return previewDoneMsg(trackID, m.store.Preview(m.ctx, trackID))
	}
}

// SaveState returns the current save label state.
func (m *Model) SaveState() SaveState {
	return m.save
}

// View renders the dashboard.
func (m *Model) View() string {
	active := m.store.ActiveLabel()
	profile := m.store.Active()
	colors := m.store.Colors()

	var b strings.Builder
	b.WriteString(styles.title.Render("Photon"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs(active))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s%s  %s\n", styles.label.Render("Color"), swatch(styles, colors, profile), colors.Describe(profile))
	fmt.Fprintf(&b, "%s%s\n", styles.label.Render(""), colorStrip(styles, colors, profile))
	fmt.Fprintf(&b, "%s%s %d%%\n", styles.label.Render("Motor"), motorBar(profile.MotorSpeed), profile.MotorSpeed)
	fmt.Fprintf(&b, "%s%s\n\n", styles.label.Render("Track"), models.TrackName(profile.SelectedTrack))

	b.WriteString(m.tracks.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderSave())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(styles.help.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTabs(active models.Label) string {
	tabs := make([]string, 0, 2)
	for _, l := range models.Labels() {
		name := strings.ToUpper(string(l[:1])) + string(l[1:])
		if l == active {
			tabs = append(tabs, styles.tabOn.Render(name))
		} else {
			tabs = append(tabs, styles.tab.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderSave() string {
	var label string
	switch m.save {
	case Saved:
		label = styles.ok.Render(m.save.String())
	case SaveFailed:
		label = styles.err.Render(m.save.String())
	case Saving:
		label = styles.warn.Render(m.save.String())
	default:
		label = m.save.String()
	}
	out := styles.button.Render(label)
	if m.saveErr != nil {
		out = lipgloss.JoinHorizontal(lipgloss.Center, out, "  ", styles.err.Render(m.saveErr.Error()))
	}
	return out
}
