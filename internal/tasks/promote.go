package tasks

import (
	"context"
)

// PromoteResult summarizes a gold promotion and ledger append.
type PromoteResult struct {
	Promoted int // rows in the rebuilt gold table
	Appended int // new ledger entries
	Existing int // tracks whose mapping was already on the ledger
}

// Promote rebuilds the gold table from the job's silver rows and appends the
// accepted mappings to the ledger.
//
// Gold is a derived projection and is rebuilt destructively on every run. The
// ledger is the opposite: insert-if-absent, so re-promoting a track in this
// run or any future job never duplicates or overwrites an earlier accepted
// mapping.
func (e *ConversionEngine) Promote(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*PromoteResult, error) {
	if err := e.requireDone(jobID); err != nil {
		return nil, err
	}

	promoted, err := e.gold.Rebuild(jobID)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, promoteUpdate(promoted))

	rows, err := e.gold.List()
	if err != nil {
		return nil, err
	}

	result := &PromoteResult{Promoted: promoted}
	for _, row := range rows {
		added, err := e.mappings.Append(row.SpotifyTrackID, row.YouTubeVideoID)
		if err != nil {
			return nil, err
		}
		if added {
			result.Appended++
		} else {
			result.Existing++
		}
	}

	e.sendProgress(progress, ledgerUpdate(result.Appended, result.Existing))
	e.logger.Info("promotion complete", "job", jobID, "gold", result.Promoted, "ledger_new", result.Appended, "ledger_existing", result.Existing)

	return result, nil
}
