// package formatter renders dashboard state and relay replies as text, JSON, CSV or Markdown.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/shared"
)

// Format names an export format.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// Formats lists the supported formats in help order.
var Formats = []Format{Text, JSON, CSV, Markdown}

// ParseFormat validates s. An empty string selects [Text].
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return Text, nil
	}
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

var (
	okMark   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
	hint     = color.New(color.FgYellow).SprintFunc()
	heading  = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
)

func check(ok bool) string {
	if ok {
		return okMark("✓")
	}
	return failMark("✗")
}

// labelTitle returns "Positive" for [models.Positive].
func labelTitle(l models.Label) string {
	s := string(l)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Export renders state in format.
func Export(state models.AppState, colors models.ColorModel, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return ExportToText(state, colors)
	case JSON:
		return ToJSON(models.SnapshotOf(state), true)
	case CSV:
		return ExportToCSV(state)
	case Markdown:
		return ExportToMarkdown(state, colors)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts both profiles to CSV with columns:
// Emotion, Active, Hue, ColorScheme, Track, TrackName, MotorSpeed
func ExportToCSV(state models.AppState) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Emotion", "Active", "Hue", "ColorScheme", "Track", "TrackName", "MotorSpeed"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, l := range models.Labels() {
		p := state.Profiles[l]
		trackName := ""
		if p.HasTrack() {
			trackName = models.TrackName(p.SelectedTrack)
		}
		record := []string{
			string(l),
			strconv.FormatBool(l == state.Active),
			strconv.Itoa(p.Hue),
			p.ColorScheme,
			p.SelectedTrack,
			trackName,
			strconv.Itoa(p.MotorSpeed),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts both profiles to a Markdown table.
func ExportToMarkdown(state models.AppState, colors models.ColorModel) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Photon state\n\n")
	fmt.Fprintf(&buf, "**Active**: %s\n", labelTitle(state.Active))
	fmt.Fprintf(&buf, "**Color model**: %s\n\n", colors.Name())

	buf.WriteString("| Emotion | Color | Swatch | Track | Motor |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, l := range models.Labels() {
		p := state.Profiles[l]
		fmt.Fprintf(&buf, "| %s | %s | `%s` | %s | %d%% |\n",
			labelTitle(l), colors.Describe(p), colors.Swatch(p), models.TrackName(p.SelectedTrack), p.MotorSpeed)
	}
	return buf.Bytes(), nil
}

// ExportToText converts both profiles to plain text, marking the active one.
func ExportToText(state models.AppState, colors models.ColorModel) ([]byte, error) {
	var buf bytes.Buffer
	for i, l := range models.Labels() {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(FormatProfile(l, state.Profiles[l], colors, l == state.Active))
	}
	return buf.Bytes(), nil
}

// FormatProfile renders one profile as an indented block.
func FormatProfile(l models.Label, p models.Profile, colors models.ColorModel, active bool) string {
	var b strings.Builder
	title := heading(labelTitle(l))
	if active {
		title += " " + okMark("(active)")
	}
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "  Color: %s %s\n", colors.Describe(p), faint(colors.Swatch(p)))
	if p.HasTrack() {
		fmt.Fprintf(&b, "  Track: %s (%s)\n", models.TrackName(p.SelectedTrack), p.SelectedTrack)
	} else {
		fmt.Fprintf(&b, "  Track: none\n")
	}
	fmt.Fprintf(&b, "  Motor: %d%%\n", p.MotorSpeed)
	return b.String()
}

// FormatDiagnostics renders the relay's configuration report.
func FormatDiagnostics(endpoint string, d models.Diagnostics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Relay: %s\n", endpoint)
	fmt.Fprintf(&b, "  %s configured\n", check(d.Configured))
	fmt.Fprintf(&b, "  %s access token\n", check(d.HasToken))
	fmt.Fprintf(&b, "  %s device id\n", check(d.HasDeviceID))
	if d.Hint != "" {
		fmt.Fprintf(&b, "  %s\n", hint(d.Hint))
	}
	return b.String()
}

// FormatReply renders a relay reply on one line.
func FormatReply(r *models.RelayReply) string {
	switch {
	case r == nil:
		return failMark("✗") + " no reply"
	case r.Error != "":
		return failMark("✗") + " " + r.Error
	case r.Saved:
		return okMark("✓") + " saved to device"
	case len(r.ReturnValue) > 0:
		return fmt.Sprintf("%s synced (return_value %s)", okMark("✓"), r.ReturnValue)
	default:
		return okMark("✓") + " synced"
	}
}

// ToJSON encodes v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// WriteExport renders state in format and writes it to path.
func WriteExport(state models.AppState, colors models.ColorModel, format Format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Export(state, colors, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(shared.ExpandHome(path), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return nil
}
