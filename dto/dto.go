package dto

import "lecturecast/entities"

// SkippedFile explains why an uploaded file was not stored.
type SkippedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type UploadResponse struct {
	Recordings []entities.Recording `json:"recordings"`
	Skipped    []SkippedFile        `json:"skipped,omitempty"`
}

type TranscribeResponse struct {
	Transcribed int `json:"transcribed"`
	Failed      int `json:"failed"`
}

type GroupResponse struct {
	Lectures []entities.Lecture `json:"lectures"`
}

type GenerateScriptRequest struct {
	Format string `json:"format" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
