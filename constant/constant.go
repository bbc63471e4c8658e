package constant

type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseUploading    Phase = "uploading"
	PhaseTranscribing Phase = "transcribing"
	PhaseProcessing   Phase = "processing"
	PhaseComplete     Phase = "complete"
	PhaseError        Phase = "error"
)

func (p Phase) String() string {
	return string(p)
}

// Terminal reports whether the pipeline has finished its current run.
// Only an explicit reset leaves these states.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError || p == PhaseIdle
}

type RecordingStatus string

const (
	RecordingStatusUploaded     RecordingStatus = "uploaded"
	RecordingStatusTranscribing RecordingStatus = "transcribing"
	RecordingStatusTranscribed  RecordingStatus = "transcribed"
	RecordingStatusError        RecordingStatus = "error"
)

func (s RecordingStatus) rank() int {
	switch s {
	case RecordingStatusUploaded:
		return 0
	case RecordingStatusTranscribing:
		return 1
	case RecordingStatusTranscribed, RecordingStatusError:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next follows the
// forward-only lifecycle uploaded -> transcribing -> transcribed|error.
func (s RecordingStatus) CanTransitionTo(next RecordingStatus) bool {
	return next.rank() > s.rank()
}

type ScriptFormat string

const (
	ScriptFormatQA         ScriptFormat = "qa"
	ScriptFormatNarrative  ScriptFormat = "narrative"
	ScriptFormatDiscussion ScriptFormat = "discussion"
)

func (f ScriptFormat) Valid() bool {
	switch f {
	case ScriptFormatQA, ScriptFormatNarrative, ScriptFormatDiscussion:
		return true
	}
	return false
}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
