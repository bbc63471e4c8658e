package entities

import "lecturecast/constant"

// PipelineStatus is the single shared progress record. Counters are
// recomputed from the store after every mutating stage, never incremented.
type PipelineStatus struct {
	TotalFiles        int            `json:"total_files"`
	TranscribedFiles  int            `json:"transcribed_files"`
	LecturesGenerated int            `json:"lectures_generated"`
	Phase             constant.Phase `json:"phase"`
	Error             string         `json:"error,omitempty"`
}
