package entities

import (
	"time"

	"github.com/google/uuid"

	"lecturecast/constant"
)

// RecordedAtSource marks whether a recording's timestamp came from its
// filename or fell back to the file's modification time.
type RecordedAtSource string

const (
	RecordedAtFromFilename RecordedAtSource = "filename"
	RecordedAtFromModTime  RecordedAtSource = "mtime"
)

type Recording struct {
	ID               uuid.UUID                `json:"id"`
	OriginalName     string                   `json:"original_name"`
	ObjectName       string                   `json:"object_name"`
	ContentType      string                   `json:"content_type"`
	Size             int64                    `json:"size"`
	ContentHash      string                   `json:"content_hash"`
	RecordedAt       time.Time                `json:"recorded_at"`
	RecordedAtSource RecordedAtSource         `json:"recorded_at_source"`
	UploadedAt       time.Time                `json:"uploaded_at"`
	Status           constant.RecordingStatus `json:"status"`
	Error            string                   `json:"error,omitempty"`
}
