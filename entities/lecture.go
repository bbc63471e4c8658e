package entities

import (
	"time"

	"github.com/google/uuid"
)

type Lecture struct {
	ID             uuid.UUID   `json:"id"`
	Number         int         `json:"number"`
	Title          string      `json:"title"`
	Summary        string      `json:"summary"`
	Topics         []string    `json:"topics"`
	RecordingIDs   []uuid.UUID `json:"recording_ids"`
	FullTranscript string      `json:"full_transcript"`
	CreatedAt      time.Time   `json:"created_at"`
}
