package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/desertthunder/photon/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	label    lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	button   lipgloss.Style
	selected string
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		label:    NewStyle(h).Width(8),
		tab:      NewStyle(h).Padding(0, 2),
		tabOn:    NewBold("#FFFFFF").Background(lipgloss.Color(t)).Padding(0, 2),
		button:   NewBold(t).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
		selected: t,
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

const (
	hueCells   = 36
	motorCells = 20
)

// swatch renders the profile's display color as a block.
func swatch(p Painter, colors models.ColorModel, profile models.Profile) string {
	return p.On("      ", lipgloss.Color(colors.Swatch(profile)))
}

// colorStrip renders the selectable range for the color model with the current
// value marked underneath.
func colorStrip(p Painter, colors models.ColorModel, profile models.Profile) string {
	var strip, marker strings.Builder
	if colors.Name() == models.HueModelName {
		current := profile.Hue * hueCells / models.HueRange
		for i := range hueCells {
			hex := colorful.Hsl(float64(i*models.HueRange/hueCells), 0.6, 0.5).Clamped().Hex()
			strip.WriteString(p.On(" ", lipgloss.Color(hex)))
			marker.WriteString(cursorCell(i == current))
		}
		return strip.String() + "\n" + strings.Repeat(" ", 10) + marker.String()
	}

	for _, s := range models.ColorSchemes {
		strip.WriteString(p.On("   ", lipgloss.Color(s.Hex)))
		marker.WriteString(" " + cursorCell(s.ID == profile.ColorScheme) + " ")
	}
	return strip.String() + "\n" + strings.Repeat(" ", 10) + marker.String()
}

func cursorCell(on bool) string {
	if on {
		return "^"
	}
	return " "
}

// motorBar renders speed (0-100) as a fixed width bar.
func motorBar(speed int) string {
	filled := min(max(speed*motorCells/models.MaxMotorSpeed, 0), motorCells)
	return strings.Repeat("█", filled) + strings.Repeat("░", motorCells-filled)
}
