package models

import "encoding/json"

// Diagnostics is the relay's GET response. It reports presence only, never values.
type Diagnostics struct {
	Configured  bool   `json:"configured"`
	HasToken    bool   `json:"hasToken"`
	HasDeviceID bool   `json:"hasDeviceId"`
	Hint        string `json:"hint,omitempty"`
}

// RelayReply is the JSON envelope of every POST response from the relay.
//
// Successful syncs carry OK and ReturnValue, saves carry OK and Saved, and failures
// carry Error with Details holding the upstream body when the device cloud rejected the call.
type RelayReply struct {
	OK          bool            `json:"ok,omitempty"`
	Saved       bool            `json:"saved,omitempty"`
	ReturnValue json.RawMessage `json:"return_value,omitempty"`
	Error       string          `json:"error,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
}
