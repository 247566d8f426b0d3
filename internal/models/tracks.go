package models

// Track is one entry of the audio catalog. IDs match the files on the device's SD card.
type Track struct {
	ID   string
	Name string
}

// Tracks is the read-only catalog in display order. It is used for display only;
// the relay forwards any track id it receives.
var Tracks = []Track{
	{ID: "0001", Name: "Bird"},
	{ID: "0005", Name: "Bubble"},
	{ID: "0007", Name: "Fire"},
	{ID: "0009", Name: "Hitting"},
	{ID: "0013", Name: "Rain"},
	{ID: "0015", Name: "Drilling"},
	{ID: "0017", Name: "Cricket"},
	{ID: "0019", Name: "Ocean"},
	{ID: "0021", Name: "Underwater"},
}

// TrackName returns the display name for id, or id itself when it is not in the catalog.
func TrackName(id string) string {
	if id == "" {
		return "none"
	}
	for _, t := range Tracks {
		if t.ID == id {
			return t.Name
		}
	}
	return id
}
