// Package tasks turns fire-and-forget relay syncs into tasks.
//
// [Dispatcher.Dispatch] starts a goroutine per payload and returns a [Task] the caller
// may wait on or drop. Sends are paced by a [rate.Limiter] so holding a key down in the
// dashboard does not flood the device cloud.
//
// # Ordering
//
// Every label keeps its own sequence counter. A result whose sequence is lower than the
// label's latest dispatch is marked [Result.Stale]. Superseded syncs are still sent and
// never cancelled; their results are only logged.
//
// # Progress Reporting
//
// An optional channel receives [ProgressUpdate] values for each phase. Updates use select
// with default so a slow reader never blocks a sync.
//
// Nothing is retried.
package tasks
