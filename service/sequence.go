package service

import (
	"sort"
	"time"

	"lecturecast/entities"
	"lecturecast/pkg/fileinfo"
)

// Recordings closer together than this may have come from one session split
// into parts, where filename sequence numbers are a better ordering signal
// than near-identical timestamps.
const closenessThreshold = 5 * time.Minute

// orderForGrouping produces the chronological order handed to the grouping
// model. Primary key is the recorded-at timestamp; inside the closeness
// window, filename sequence numbers break the tie when both sides have one.
// The sort is stable, so re-running it on its own output is a no-op.
func orderForGrouping(recs []entities.Recording) []entities.Recording {
	out := make([]entities.Recording, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return chronoLess(out[i], out[j])
	})
	return out
}

func chronoLess(a, b entities.Recording) bool {
	gap := a.RecordedAt.Sub(b.RecordedAt)
	if gap < 0 {
		gap = -gap
	}
	if gap < closenessThreshold {
		aSeq, aOK := fileinfo.ParseSequence(a.OriginalName)
		bSeq, bOK := fileinfo.ParseSequence(b.OriginalName)
		if aOK && bOK && aSeq != bSeq {
			return aSeq < bSeq
		}
	}
	return a.RecordedAt.Before(b.RecordedAt)
}
