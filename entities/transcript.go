package entities

import (
	"time"

	"github.com/google/uuid"
)

// Word is one recognized word with its timing offsets in seconds from the
// start of the recording. Speaker is the diarization index when the provider
// reports one.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *int    `json:"speaker,omitempty"`
}

type Paragraph struct {
	Speaker *int    `json:"speaker,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Transcript is the speech-to-text result for one recording. It is written
// once and never mutated afterwards.
type Transcript struct {
	RecordingID uuid.UUID   `json:"recording_id"`
	Text        string      `json:"text"`
	Words       []Word      `json:"words,omitempty"`
	Confidence  float64     `json:"confidence"`
	Duration    float64     `json:"duration"`
	Paragraphs  []Paragraph `json:"paragraphs,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
