package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	ErrMissingColor      = errors.New("missing color value")
	ErrInvalidColor      = errors.New("invalid color value")
	ErrUnknownColorModel = errors.New("unknown color model")
)

const (
	HueModelName    = "hue"
	SchemeModelName = "scheme"
)

// DefaultColorModel names the color model used when configuration leaves it empty.
//
// Set at build time with -ldflags "-X github.com/desertthunder/photon/internal/models.DefaultColorModel=scheme".
var DefaultColorModel = HueModelName

// ColorModel is the representation a build uses for a profile's color.
//
// The dashboard, the relay and the device command all go through the same model so
// the field names stay consistent end to end.
type ColorModel interface {
	Name() string
	// Field is the JSON key carrying the color in a [SyncPayload].
	Field() string
	// Payload copies the profile's color into p.
	Payload(profile Profile, p *SyncPayload)
	// Encode validates a raw request value and stores it on cmd.
	Encode(raw json.RawMessage, cmd *DeviceCommand) error
	// Swatch returns a display hex color for the profile.
	Swatch(profile Profile) string
	// Describe returns a short human-readable color label.
	Describe(profile Profile) string
	// Step returns the update that moves the color by delta UI steps.
	Step(profile Profile, delta int) ProfileUpdate
}

// NewColorModel returns the model registered under name. An empty name selects [DefaultColorModel].
func NewColorModel(name string) (ColorModel, error) {
	if name == "" {
		name = DefaultColorModel
	}
	switch name {
	case HueModelName:
		return HueModel{StepSize: 10}, nil
	case SchemeModelName:
		return SchemeModel{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownColorModel, name)
	}
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// HueModel carries the color as a hue angle in degrees.
type HueModel struct {
	StepSize int
}

func (HueModel) Name() string  { return HueModelName }
func (HueModel) Field() string { return "hue" }

func (HueModel) Payload(profile Profile, p *SyncPayload) {
	h := profile.Hue
	p.Hue = &h
}

// Encode requires a JSON number. Zero is a valid hue.
func (HueModel) Encode(raw json.RawMessage, cmd *DeviceCommand) error {
	if isAbsent(raw) {
		return ErrMissingColor
	}
	var h float64
	if err := json.Unmarshal(raw, &h); err != nil {
		return fmt.Errorf("%w: hue must be a number", ErrInvalidColor)
	}
	cmd.Hue = &h
	return nil
}

func (HueModel) Swatch(profile Profile) string {
	return colorful.Hsl(float64(profile.Hue), 0.6, 0.5).Clamped().Hex()
}

func (HueModel) Describe(profile Profile) string {
	return fmt.Sprintf("hue %d°", profile.Hue)
}

func (m HueModel) Step(profile Profile, delta int) ProfileUpdate {
	step := m.StepSize
	if step <= 0 {
		step = 1
	}
	h := (((profile.Hue + delta*step) % HueRange) + HueRange) % HueRange
	return SetHue(h)
}

// SchemeModel carries the color as a named scheme from [ColorSchemes].
type SchemeModel struct{}

func (SchemeModel) Name() string  { return SchemeModelName }
func (SchemeModel) Field() string { return "colorScheme" }

func (SchemeModel) Payload(profile Profile, p *SyncPayload) {
	p.ColorScheme = profile.ColorScheme
}

// Encode requires a non-empty JSON string. The palette is not enforced here; the
// firmware owns the final interpretation.
func (SchemeModel) Encode(raw json.RawMessage, cmd *DeviceCommand) error {
	if isAbsent(raw) {
		return ErrMissingColor
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%w: color scheme must be a string", ErrInvalidColor)
	}
	if s == "" {
		return ErrMissingColor
	}
	cmd.Scheme = s
	return nil
}

func (SchemeModel) Swatch(profile Profile) string {
	if s, ok := LookupScheme(profile.ColorScheme); ok {
		return s.Hex
	}
	return "#808080"
}

func (SchemeModel) Describe(profile Profile) string {
	if s, ok := LookupScheme(profile.ColorScheme); ok {
		return s.Name
	}
	return profile.ColorScheme
}

func (SchemeModel) Step(profile Profile, delta int) ProfileUpdate {
	idx := 0
	for i, s := range ColorSchemes {
		if s.ID == profile.ColorScheme {
			idx = i
			break
		}
	}
	n := len(ColorSchemes)
	next := ColorSchemes[(((idx+delta)%n)+n)%n]
	return SetColorScheme(next.ID)
}

// ColorScheme is one entry of the named palette.
type ColorScheme struct {
	ID   string
	Name string
	Hex  string
}

// ColorSchemes is the fixed palette, in display order.
var ColorSchemes = []ColorScheme{
	{ID: "sunrise", Name: "Sunrise", Hex: "#F4A259"},
	{ID: "ember", Name: "Ember", Hex: "#D1495B"},
	{ID: "forest", Name: "Forest", Hex: "#3B8B5A"},
	{ID: "ocean", Name: "Ocean", Hex: "#2E86AB"},
	{ID: "lavender", Name: "Lavender", Hex: "#9D8DF1"},
	{ID: "aurora", Name: "Aurora", Hex: "#5BE7C4"},
}

// LookupScheme finds a palette entry by id.
func LookupScheme(id string) (ColorScheme, bool) {
	for _, s := range ColorSchemes {
		if s.ID == id {
			return s, true
		}
	}
	return ColorScheme{}, false
}
