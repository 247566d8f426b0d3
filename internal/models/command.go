package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// ActionSave asks the device to persist its current state to flash.
const ActionSave = "save"

// SyncPayload is the JSON body the dashboard sends to the relay.
//
// Exactly one of Hue or ColorScheme is set, according to the build's [ColorModel].
// Personalizing marks a direct user edit; background resends leave it false.
type SyncPayload struct {
	Action        string `json:"action,omitempty"`
	Emotion       Label  `json:"emotion,omitempty"`
	Hue           *int   `json:"hue,omitempty"`
	ColorScheme   string `json:"colorScheme,omitempty"`
	SelectedTrack string `json:"selectedTrack"`
	MotorSpeed    *int   `json:"motorSpeed,omitempty"`
	Personalizing bool   `json:"personalizing"`
}

// NewSyncPayload builds the payload for a profile.
func NewSyncPayload(l Label, p Profile, colors ColorModel, personalizing bool) SyncPayload {
	speed := p.MotorSpeed
	payload := SyncPayload{
		Emotion:       l,
		SelectedTrack: p.SelectedTrack,
		MotorSpeed:    &speed,
		Personalizing: personalizing,
	}
	colors.Payload(p, &payload)
	return payload
}

// SavePayload is the body of an explicit save-to-flash request.
func SavePayload() SyncPayload {
	return SyncPayload{Action: ActionSave}
}

// DeviceCommand is the abbreviated-key record the firmware parses from the
// setState function argument.
//
//	e emotion, h hue, c color scheme, t track id, n track number,
//	m motor speed, p personalizing
//
// Key order on the wire is fixed by the struct order.
type DeviceCommand struct {
	Emotion       string   `json:"e"`
	Hue           *float64 `json:"h,omitempty"`
	Scheme        string   `json:"c,omitempty"`
	Track         string   `json:"t"`
	TrackNumber   int      `json:"n"`
	MotorSpeed    *float64 `json:"m,omitempty"`
	Personalizing bool     `json:"p"`
}

// SaveCommand is the command sent for an explicit save.
type SaveCommand struct {
	Save bool `json:"save"`
}

// TrackNumber returns the player index for a track id: the integer at its start
// (leading whitespace skipped), or 1 when there is none or it is zero.
func TrackNumber(id string) int {
	if id == "" {
		return 1
	}
	n, err := strconv.Atoi(leadingDigits(id))
	if err != nil || n == 0 {
		return 1
	}
	return n
}

func leadingDigits(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[0] == '-' || s[0] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// Arg encodes a command as the setState argument string.
func Arg(cmd any) (string, error) {
	b, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
