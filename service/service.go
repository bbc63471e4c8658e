package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"lecturecast/config"
	"lecturecast/constant"
	"lecturecast/dto"
	"lecturecast/entities"
	"lecturecast/pkg/deepgram"
	"lecturecast/pkg/gemini"
	"lecturecast/pkg/objstore"
	"lecturecast/repository"
)

var (
	// ErrValidation covers bad requests rejected before any state mutation.
	ErrValidation = errors.New("validation error")
	// ErrNotConfigured means a required external-service credential is absent.
	ErrNotConfigured = errors.New("external service not configured")
	// ErrConflict means another pipeline run is in flight.
	ErrConflict = errors.New("a pipeline run is already in progress")
	// ErrNotFound mirrors repository.ErrNotFound at the service boundary.
	ErrNotFound = repository.ErrNotFound
)

// Transcriber is the speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (*deepgram.Result, error)
}

// LectureModel is the grouping/generation collaborator.
type LectureModel interface {
	GroupIntoLectures(ctx context.Context, items []gemini.GroupingItem) ([]gemini.LectureGroup, error)
	GeneratePodcastScript(ctx context.Context, title, transcript, format string) (*gemini.ScriptResult, error)
}

// Service orchestrates the upload -> transcribe -> group -> script pipeline.
// All substantive work is delegated to the external collaborators; the
// service sequences calls and keeps the store and status record coherent.
type Service interface {
	Upload(ctx context.Context, files []UploadFile) (*dto.UploadResponse, error)
	Transcribe(ctx context.Context) (*dto.TranscribeResponse, error)
	GroupLectures(ctx context.Context) ([]entities.Lecture, error)
	GenerateScript(ctx context.Context, lectureID uuid.UUID, format string) (*entities.PodcastScript, error)
	Reset(ctx context.Context) error

	Status() entities.PipelineStatus
	ListRecordings() []entities.Recording
	GetTranscript(recordingID uuid.UUID) (entities.Transcript, error)
	ListLectures() []entities.Lecture
	GetLecture(id uuid.UUID) (entities.Lecture, error)
	ListScripts(lectureID uuid.UUID) ([]entities.PodcastScript, error)
	ExportLectures() ([]byte, error)
}

type service struct {
	store   repository.Store
	objects objstore.Store
	stt     Transcriber
	model   LectureModel
	cfg     *config.Config

	// Serializes transcribe/group runs. Concurrent runs would interleave
	// phase transitions, so the second caller gets ErrConflict instead.
	runMu   sync.Mutex
	running bool
}

// New wires the service. stt and model may be nil when the corresponding
// credential is missing; operations that need them fail with
// ErrNotConfigured.
func New(store repository.Store, objects objstore.Store, stt Transcriber, model LectureModel, cfg *config.Config) Service {
	return &service{
		store:   store,
		objects: objects,
		stt:     stt,
		model:   model,
		cfg:     cfg,
	}
}

func (s *service) acquireRun() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *service) releaseRun() {
	s.runMu.Lock()
	s.running = false
	s.runMu.Unlock()
}

func (s *service) Status() entities.PipelineStatus {
	return s.store.Status()
}

func (s *service) ListRecordings() []entities.Recording {
	return s.store.ListRecordings()
}

func (s *service) GetTranscript(recordingID uuid.UUID) (entities.Transcript, error) {
	return s.store.GetTranscript(recordingID)
}

func (s *service) ListLectures() []entities.Lecture {
	return s.store.ListLectures()
}

func (s *service) GetLecture(id uuid.UUID) (entities.Lecture, error) {
	return s.store.GetLecture(id)
}

func (s *service) ListScripts(lectureID uuid.UUID) ([]entities.PodcastScript, error) {
	if _, err := s.store.GetLecture(lectureID); err != nil {
		return nil, err
	}
	return s.store.ListScriptsByLecture(lectureID), nil
}

// Reset drops all pipeline state and stored audio and returns the status to
// idle.
func (s *service) Reset(ctx context.Context) error {
	if err := s.objects.RemoveAll(ctx); err != nil {
		return err
	}
	s.store.Reset()
	return nil
}

// refreshCounters recomputes the status counters from store contents.
// Recomputing instead of incrementing keeps the counters drift-free no
// matter which stage mutated what.
func (s *service) refreshCounters() {
	recordings := s.store.ListRecordings()
	total := len(recordings)
	transcribed := 0
	for _, rec := range recordings {
		if rec.Status == constant.RecordingStatusTranscribed {
			transcribed++
		}
	}
	lectures := len(s.store.ListLectures())

	s.store.UpdateStatus(repository.StatusUpdate{
		TotalFiles:        &total,
		TranscribedFiles:  &transcribed,
		LecturesGenerated: &lectures,
	})
}
