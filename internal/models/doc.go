// Package models defines the domain types shared by the dashboard, the relay and the device protocol.
//
// The package contains three groups of types:
//
// 1. Dashboard state
//   - [Label] : emotional state identifier (positive, negative)
//   - [Profile] : color, track and motor speed chosen for one label
//   - [ProfileUpdate] : partial, last-write-wins edit of a Profile
//   - [AppState] / [Snapshot] : the in-memory state and its persisted form
//
// 2. Wire types
//   - [SyncPayload] : JSON body the dashboard sends to the relay
//   - [DeviceCommand] : compact abbreviated-key record understood by the firmware
//
// 3. Catalogs and color models
//   - [Tracks] : read-only track catalog, display only
//   - [ColorSchemes] : named palette for the scheme color model
//   - [ColorModel] : hue or scheme representation, selected by name with [NewColorModel]
package models
