package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/photon/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgSaveComplete
	MsgSaveReset
	MsgPreviewDone
)

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// saveCompleteMsg is the constructor for [MsgSaveComplete]
func saveCompleteMsg(gen int, err error) Msg {
	return Msg{
		kind: MsgSaveComplete,
		data: struct {
			gen int
			err error
		}{gen, err},
	}
}

// saveResetMsg is the constructor for [MsgSaveReset]. gen identifies the save it belongs to.
func saveResetMsg(gen int) Msg {
	return Msg{kind: MsgSaveReset, data: gen}
}

// previewDoneMsg is the constructor for [MsgPreviewDone]
func previewDoneMsg(trackID string, err error) Msg {
	return Msg{
		kind: MsgPreviewDone,
		data: struct {
			trackID string
			err     error
		}{trackID, err},
	}
}
