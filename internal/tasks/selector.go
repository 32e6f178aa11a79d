package tasks

import (
	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
)

// SelectCandidate deterministically picks the best video from a track's raw
// search candidates, or nil when the sequence is empty.
//
// Candidates whose channel name contains "topic" (case-insensitive) are
// auto-generated official-audio uploads and win over everything else; within
// that partition the lowest search ranking is taken. Without a topic channel
// the lowest-ranked candidate overall wins. Ties on ranking resolve to the
// first candidate in input order.
//
// An empty input is a valid, expected outcome: the track may be unavailable
// on the platform, and the caller skips it rather than failing the job.
func SelectCandidate(candidates []snapshots.RawCandidate) *snapshots.RawCandidate {
	if len(candidates) == 0 {
		return nil
	}

	best := pickMinRank(candidates, func(c snapshots.RawCandidate) bool {
		return shared.IsTopicChannel(c.Channel)
	})
	if best == nil {
		best = pickMinRank(candidates, func(snapshots.RawCandidate) bool { return true })
	}

	return best
}

// pickMinRank returns the first candidate with the minimum ranking among
// those matching the predicate. Strict comparison keeps ties stable on input
// order.
func pickMinRank(candidates []snapshots.RawCandidate, match func(snapshots.RawCandidate) bool) *snapshots.RawCandidate {
	idx := -1
	for i, c := range candidates {
		if !match(c) {
			continue
		}
		if idx == -1 || c.RankingInSearch < candidates[idx].RankingInSearch {
			idx = i
		}
	}

	if idx == -1 {
		return nil
	}
	return &candidates[idx]
}
