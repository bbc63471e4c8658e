package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"lecturecast/entities"
)

func rec(name string, at time.Time) entities.Recording {
	return entities.Recording{ID: uuid.New(), OriginalName: name, RecordedAt: at}
}

func names(recs []entities.Recording) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.OriginalName
	}
	return out
}

func TestOrderForGroupingSequenceTieBreakWithinWindow(t *testing.T) {
	base := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

	// Two minutes apart: inside the closeness window, so the filename
	// sequence numbers decide and part 1 comes first despite its later
	// timestamp.
	got := orderForGrouping([]entities.Recording{
		rec("lecture_part2.mp3", base),
		rec("lecture_part1.mp3", base.Add(2*time.Minute)),
	})

	want := []string{"lecture_part1.mp3", "lecture_part2.mp3"}
	for i := range want {
		if got[i].OriginalName != want[i] {
			t.Fatalf("order = %v, want %v", names(got), want)
		}
	}
}

func TestOrderForGroupingTimestampWinsOutsideWindow(t *testing.T) {
	base := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

	// Ten minutes apart: raw timestamp order holds regardless of sequence
	// numbers.
	got := orderForGrouping([]entities.Recording{
		rec("lecture_part2.mp3", base),
		rec("lecture_part1.mp3", base.Add(10*time.Minute)),
	})

	want := []string{"lecture_part2.mp3", "lecture_part1.mp3"}
	for i := range want {
		if got[i].OriginalName != want[i] {
			t.Fatalf("order = %v, want %v", names(got), want)
		}
	}
}

func TestOrderForGroupingFallsBackWithoutBothSequences(t *testing.T) {
	base := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

	// Close together, but one side has no sequence number: timestamps
	// decide even within the window.
	got := orderForGrouping([]entities.Recording{
		rec("randomname.mp3", base.Add(2*time.Minute)),
		rec("lecture_part1.mp3", base.Add(3*time.Minute)),
		rec("notes.mp3", base),
	})

	want := []string{"notes.mp3", "randomname.mp3", "lecture_part1.mp3"}
	for i := range want {
		if got[i].OriginalName != want[i] {
			t.Fatalf("order = %v, want %v", names(got), want)
		}
	}
}

func TestOrderForGroupingIdempotent(t *testing.T) {
	base := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	input := []entities.Recording{
		rec("lecture_part3.mp3", base.Add(1*time.Minute)),
		rec("lecture_part1.mp3", base.Add(2*time.Minute)),
		rec("evening notes.mp3", base.Add(3*time.Hour)),
		rec("lecture_part2.mp3", base),
	}

	once := orderForGrouping(input)
	twice := orderForGrouping(once)

	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("re-ordering changed the sequence: %v vs %v", names(once), names(twice))
		}
	}
}
