package tasks

import (
	"fmt"

	"github.com/desertthunder/photon/internal/models"
)

// ProgressUpdate represents a progress event for one dispatched sync.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase        // Sync phase
	Label   models.Label // Profile the sync belongs to; empty for saves
	Seq     uint64       // Dispatch sequence within the label
	Message string       // Human-readable message for display
	Err     error        // Set on Failed
}

// Sync phase enumeration
type Phase int

const (
	Queued Phase = iota
	Sending
	Sent
	Failed
	Superseded
)

func (p Phase) String() string {
	switch p {
	case Queued:
		return "queued"
	case Sending:
		return "sending"
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	case Superseded:
		return "superseded"
	default:
		return ""
	}
}

func subject(label models.Label) string {
	if label == "" {
		return "save"
	}
	return string(label)
}

func queuedUpdate(label models.Label, seq uint64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Queued,
		Label:   label,
		Seq:     seq,
		Message: fmt.Sprintf("Queued %s sync #%d", subject(label), seq),
	}
}

func sendingUpdate(label models.Label, seq uint64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Sending,
		Label:   label,
		Seq:     seq,
		Message: fmt.Sprintf("Sending %s #%d...", subject(label), seq),
	}
}

func sentUpdate(label models.Label, seq uint64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Sent,
		Label:   label,
		Seq:     seq,
		Message: fmt.Sprintf("✓ Synced %s", subject(label)),
	}
}

func failedUpdate(label models.Label, seq uint64, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Label:   label,
		Seq:     seq,
		Message: fmt.Sprintf("✗ Sync %s failed: %v", subject(label), err),
		Err:     err,
	}
}

func supersededUpdate(label models.Label, seq, latest uint64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Superseded,
		Label:   label,
		Seq:     seq,
		Message: fmt.Sprintf("%s #%d superseded by #%d", subject(label), seq, latest),
	}
}
