// Package ui implements the terminal dashboard using bubbletea's Elm architecture.
//
// The dashboard edits the two emotion profiles held by a store.Store:
//   - tab : switch between the positive and negative profile
//   - ←/→ : step the color (hue or named scheme, per the build's color model)
//   - +/- : adjust motor speed
//   - ↑/↓, enter : move through the track catalog and toggle the selected track
//   - space, esc : preview the highlighted track, stop the preview
//   - s : save the current device state to flash
//
// Every edit goes through the store, which persists and syncs it as a detached task.
// Sync progress arrives on a [tasks.ProgressUpdate] channel and is shown in the status line.
// Only save-to-device reports a failure in place; the save label reverts after [SaveResetDelay].
package ui
