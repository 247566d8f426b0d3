// Package store owns the dashboard state: two emotion profiles and the active label.
//
// A [Store] is constructed with its collaborators injected through [Options]:
//   - [Storage] : durable snapshot adapter ([FileStorage], [MemoryStorage], or the sqlite repository)
//   - [Syncer] : sends profiles to the relay as detached tasks (tasks.Dispatcher)
//   - media.Player : track preview playback
//
// Persistence is best-effort. Load keeps defaults on any failure and Save logs instead
// of returning errors. Sync results are never applied back to the state, so local
// state and the device may briefly disagree.
package store
