package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownLabel = errors.New("unknown emotion label")

// Label identifies an emotional profile.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
)

// DefaultLabel is the active label on a fresh load.
const DefaultLabel = Positive

const (
	DefaultMotorSpeed = 50
	MinMotorSpeed     = 0
	MaxMotorSpeed     = 100
	HueRange          = 360
)

// Labels returns every label in display order.
func Labels() []Label {
	return []Label{Positive, Negative}
}

// ParseLabel validates s as a [Label].
func ParseLabel(s string) (Label, error) {
	switch l := Label(s); l {
	case Positive, Negative:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
}

// Other returns the opposite label.
func (l Label) Other() Label {
	if l == Positive {
		return Negative
	}
	return Positive
}

func (l Label) String() string { return string(l) }

// Profile holds the choices made for one label.
//
// An empty SelectedTrack means no track is chosen.
type Profile struct {
	Hue           int    `json:"hue"`
	ColorScheme   string `json:"colorScheme"`
	SelectedTrack string `json:"selectedTrack"`
	MotorSpeed    int    `json:"motorSpeed"`
}

// DefaultProfile returns the profile a label starts with.
func DefaultProfile(l Label) Profile {
	p := Profile{Hue: 30, ColorScheme: "sunrise", MotorSpeed: DefaultMotorSpeed}
	if l == Negative {
		p.Hue = 210
		p.ColorScheme = "ocean"
	}
	return p
}

// HasTrack reports whether a track is selected.
func (p Profile) HasTrack() bool { return p.SelectedTrack != "" }

// Normalize returns p with hue wrapped into 0..359, motor speed clamped into 0..100,
// and an unknown color scheme replaced by the label's default.
func (p Profile) Normalize(l Label) Profile {
	p.Hue = ((p.Hue % HueRange) + HueRange) % HueRange
	p.MotorSpeed = min(max(p.MotorSpeed, MinMotorSpeed), MaxMotorSpeed)
	if _, ok := LookupScheme(p.ColorScheme); !ok {
		p.ColorScheme = DefaultProfile(l).ColorScheme
	}
	return p
}

// ProfileUpdate is a partial edit. Nil fields are left untouched.
type ProfileUpdate struct {
	Hue           *int
	ColorScheme   *string
	SelectedTrack *string
	MotorSpeed    *int
}

// Apply merges the set fields of u into p.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Hue != nil {
		p.Hue = *u.Hue
	}
	if u.ColorScheme != nil {
		p.ColorScheme = *u.ColorScheme
	}
	if u.SelectedTrack != nil {
		p.SelectedTrack = *u.SelectedTrack
	}
	if u.MotorSpeed != nil {
		p.MotorSpeed = *u.MotorSpeed
	}
	return p
}

// Empty reports whether u changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Hue == nil && u.ColorScheme == nil && u.SelectedTrack == nil && u.MotorSpeed == nil
}

// SetHue returns an update for the hue.
func SetHue(h int) ProfileUpdate { return ProfileUpdate{Hue: &h} }

// SetColorScheme returns an update for the color scheme.
func SetColorScheme(s string) ProfileUpdate { return ProfileUpdate{ColorScheme: &s} }

// SetTrack returns an update for the selected track; "" clears it.
func SetTrack(id string) ProfileUpdate { return ProfileUpdate{SelectedTrack: &id} }

// SetMotorSpeed returns an update for the motor speed.
func SetMotorSpeed(m int) ProfileUpdate { return ProfileUpdate{MotorSpeed: &m} }

// AppState is the dashboard's session-wide state.
type AppState struct {
	Active   Label
	Profiles map[Label]Profile
}

// NewAppState returns a fully populated state with defaults.
func NewAppState() AppState {
	s := AppState{Active: DefaultLabel, Profiles: make(map[Label]Profile, 2)}
	for _, l := range Labels() {
		s.Profiles[l] = DefaultProfile(l)
	}
	return s
}

// Clone returns a deep copy of s.
func (s AppState) Clone() AppState {
	out := AppState{Active: s.Active, Profiles: make(map[Label]Profile, len(s.Profiles))}
	for l, p := range s.Profiles {
		out.Profiles[l] = p
	}
	return out
}

// Snapshot is the persisted form of [AppState]. The active label is not persisted.
type Snapshot struct {
	Positive Profile `json:"positive"`
	Negative Profile `json:"negative"`
}

// SnapshotOf extracts the persisted fields of s.
func SnapshotOf(s AppState) Snapshot {
	return Snapshot{Positive: s.Profiles[Positive], Negative: s.Profiles[Negative]}
}

// DecodeSnapshot overlays the JSON record in data onto defaults field by field.
//
// Missing profiles or fields keep their defaults, unknown fields are ignored and a
// null selectedTrack means no track.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	pos, neg := DefaultProfile(Positive), DefaultProfile(Negative)
	raw := struct {
		Positive *Profile `json:"positive"`
		Negative *Profile `json:"negative"`
	}{Positive: &pos, Negative: &neg}

	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, err
	}

	out := Snapshot{Positive: DefaultProfile(Positive), Negative: DefaultProfile(Negative)}
	if raw.Positive != nil {
		out.Positive = raw.Positive.Normalize(Positive)
	}
	if raw.Negative != nil {
		out.Negative = raw.Negative.Normalize(Negative)
	}
	return out, nil
}

// Apply writes the snapshot's profiles into s.
func (sn Snapshot) Apply(s *AppState) {
	if s.Profiles == nil {
		s.Profiles = make(map[Label]Profile, 2)
	}
	s.Profiles[Positive] = sn.Positive
	s.Profiles[Negative] = sn.Negative
}
