package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewColorModel(t *testing.T) {
	hue, err := NewColorModel("hue")
	if err != nil || hue.Name() != HueModelName || hue.Field() != "hue" {
		t.Errorf("hue model = %v, %v", hue, err)
	}

	scheme, err := NewColorModel("scheme")
	if err != nil || scheme.Name() != SchemeModelName || scheme.Field() != "colorScheme" {
		t.Errorf("scheme model = %v, %v", scheme, err)
	}

	def, err := NewColorModel("")
	if err != nil || def.Name() != DefaultColorModel {
		t.Errorf("default model = %v, %v", def, err)
	}

	if _, err := NewColorModel("rgb"); !errors.Is(err, ErrUnknownColorModel) {
		t.Errorf("expected ErrUnknownColorModel, got %v", err)
	}
}

func TestHueModel(t *testing.T) {
	m := HueModel{StepSize: 10}

	t.Run("Encode", func(t *testing.T) {
		tt := []struct {
			name    string
			raw     string
			want    float64
			wantErr error
		}{
			{name: "number", raw: `45`, want: 45},
			{name: "zero is valid", raw: `0`, want: 0},
			{name: "fractional", raw: `12.5`, want: 12.5},
			{name: "absent", raw: ``, wantErr: ErrMissingColor},
			{name: "null", raw: `null`, wantErr: ErrMissingColor},
			{name: "string", raw: `"45"`, wantErr: ErrInvalidColor},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				var cmd DeviceCommand
				err := m.Encode(json.RawMessage(tc.raw), &cmd)
				if tc.wantErr != nil {
					if !errors.Is(err, tc.wantErr) {
						t.Errorf("expected %v, got %v", tc.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cmd.Hue == nil || *cmd.Hue != tc.want {
					t.Errorf("Hue = %v, want %v", cmd.Hue, tc.want)
				}
			})
		}
	})

	t.Run("Step wraps", func(t *testing.T) {
		u := m.Step(Profile{Hue: 355}, 1)
		if u.Hue == nil || *u.Hue != 5 {
			t.Errorf("expected 5, got %v", u.Hue)
		}
		u = m.Step(Profile{Hue: 5}, -1)
		if *u.Hue != 355 {
			t.Errorf("expected 355, got %d", *u.Hue)
		}
	})

	t.Run("Swatch", func(t *testing.T) {
		got := m.Swatch(Profile{Hue: 0})
		if !strings.HasPrefix(got, "#") || len(got) != 7 {
			t.Errorf("unexpected swatch %q", got)
		}
		if m.Swatch(Profile{Hue: 0}) == m.Swatch(Profile{Hue: 180}) {
			t.Error("different hues should render differently")
		}
	})

	t.Run("Payload", func(t *testing.T) {
		var p SyncPayload
		m.Payload(Profile{Hue: 0, ColorScheme: "forest"}, &p)
		if p.Hue == nil || *p.Hue != 0 || p.ColorScheme != "" {
			t.Errorf("unexpected payload %+v", p)
		}
	})
}

func TestSchemeModel(t *testing.T) {
	m := SchemeModel{}

	t.Run("Encode", func(t *testing.T) {
		var cmd DeviceCommand
		if err := m.Encode(json.RawMessage(`"ocean"`), &cmd); err != nil || cmd.Scheme != "ocean" {
			t.Errorf("Encode() = %q, %v", cmd.Scheme, err)
		}
		if err := m.Encode(json.RawMessage(`""`), &cmd); !errors.Is(err, ErrMissingColor) {
			t.Errorf("expected ErrMissingColor, got %v", err)
		}
		if err := m.Encode(json.RawMessage(`7`), &cmd); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("expected ErrInvalidColor, got %v", err)
		}
	})

	t.Run("Step cycles palette", func(t *testing.T) {
		last := ColorSchemes[len(ColorSchemes)-1].ID
		u := m.Step(Profile{ColorScheme: last}, 1)
		if *u.ColorScheme != ColorSchemes[0].ID {
			t.Errorf("expected wrap to %s, got %s", ColorSchemes[0].ID, *u.ColorScheme)
		}
		u = m.Step(Profile{ColorScheme: ColorSchemes[0].ID}, -1)
		if *u.ColorScheme != last {
			t.Errorf("expected wrap to %s, got %s", last, *u.ColorScheme)
		}
	})

	t.Run("Swatch and Describe", func(t *testing.T) {
		p := Profile{ColorScheme: "forest"}
		if m.Swatch(p) != "#3B8B5A" || m.Describe(p) != "Forest" {
			t.Errorf("unexpected %s / %s", m.Swatch(p), m.Describe(p))
		}
	})
}

func TestDeviceCommand(t *testing.T) {
	t.Run("wire format", func(t *testing.T) {
		hue := 45.0
		speed := 50.0
		cmd := DeviceCommand{Emotion: "positive", Hue: &hue, Track: "", TrackNumber: 1, MotorSpeed: &speed}

		arg, err := Arg(cmd)
		if err != nil {
			t.Fatalf("Arg() error = %v", err)
		}
		want := `{"e":"positive","h":45,"t":"","n":1,"m":50,"p":false}`
		if arg != want {
			t.Errorf("Arg() = %s, want %s", arg, want)
		}
	})

	t.Run("scheme variant omits hue", func(t *testing.T) {
		cmd := DeviceCommand{Emotion: "negative", Scheme: "ocean", Track: "0013", TrackNumber: 13, Personalizing: true}

		arg, _ := Arg(cmd)
		want := `{"e":"negative","c":"ocean","t":"0013","n":13,"p":true}`
		if arg != want {
			t.Errorf("Arg() = %s, want %s", arg, want)
		}
	})

	t.Run("save", func(t *testing.T) {
		arg, _ := Arg(SaveCommand{Save: true})
		if arg != `{"save":true}` {
			t.Errorf("Arg() = %s", arg)
		}
	})
}

func TestNewSyncPayload(t *testing.T) {
	p := Profile{Hue: 120, ColorScheme: "forest", SelectedTrack: "0005", MotorSpeed: 30}

	payload := NewSyncPayload(Negative, p, HueModel{}, true)
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"emotion":"negative","hue":120,"selectedTrack":"0005","motorSpeed":30,"personalizing":true}`
	if string(data) != want {
		t.Errorf("payload = %s, want %s", data, want)
	}

	scheme := NewSyncPayload(Positive, Profile{ColorScheme: "ember"}, SchemeModel{}, false)
	data, _ = json.Marshal(scheme)
	want = `{"emotion":"positive","colorScheme":"ember","selectedTrack":"","motorSpeed":0,"personalizing":false}`
	if string(data) != want {
		t.Errorf("payload = %s, want %s", data, want)
	}

	save, _ := json.Marshal(SavePayload())
	if string(save) != `{"action":"save","selectedTrack":"","personalizing":false}` {
		t.Errorf("save payload = %s", save)
	}
}
