package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Pipeline phase enumeration
type Phase int

const (
	CaptureSource Phase = iota
	NormalizeSource
	SearchCandidates
	SelectVideos
	PromoteGold
	AppendLedger
	CreatePlaylist
	SubmitBatch
)

func (p Phase) String() string {
	switch p {
	case CaptureSource:
		return "capture_source"
	case NormalizeSource:
		return "normalize_source"
	case SearchCandidates:
		return "search_candidates"
	case SelectVideos:
		return "select_videos"
	case PromoteGold:
		return "promote_gold"
	case AppendLedger:
		return "append_ledger"
	case CreatePlaylist:
		return "create_playlist"
	case SubmitBatch:
		return "submit_batch"
	default:
		return ""
	}
}

func capturePageUpdate(fetched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CaptureSource,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d/%d playlist items", fetched, total),
	}
}

func normalizeUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NormalizeSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Normalized %d/%d tracks", step, total),
	}
}

func searchTrackUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s", step, total, query),
	}
}

func searchSkipUpdate(step, total int, trackID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Snapshot exists for %s, skipping", step, total, trackID),
	}
}

func selectUpdate(step, total int, trackID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Selecting video for %s", step, total, trackID),
	}
}

func promoteUpdate(promoted int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PromoteGold,
		Step:    promoted,
		Total:   promoted,
		Message: fmt.Sprintf("Promoted %d tracks to gold", promoted),
	}
}

func ledgerUpdate(appended, existing int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendLedger,
		Step:    appended + existing,
		Total:   appended + existing,
		Message: fmt.Sprintf("Ledger: %d new mappings, %d already recorded", appended, existing),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating YouTube Music playlist: %s", name),
	}
}

func submitBatchUpdate(step, total, from, to int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Adding tracks %d–%d (batch %d/%d)", from, to, step, total),
	}
}
