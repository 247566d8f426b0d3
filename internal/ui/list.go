package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/photon/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track    models.Track
	selected bool
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string {
	if i.selected {
		return "● " + i.track.Name
	}
	return "  " + i.track.Name
}
func (i trackItem) Description() string {
	desc := fmt.Sprintf("track %s", i.track.ID)
	if i.selected {
		desc = fmt.Sprintf("%s • selected", desc)
	}
	return desc
}

// trackItems builds the catalog list, marking selectedID.
func trackItems(selectedID string) []list.Item {
	items := make([]list.Item, len(models.Tracks))
	for i, t := range models.Tracks {
		items[i] = trackItem{track: t, selected: t.ID == selectedID}
	}
	return items
}

func trackIndex(id string) int {
	for i, t := range models.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
