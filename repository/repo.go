package repository

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lecturecast/constant"
	"lecturecast/entities"
)

var (
	ErrNotFound            = errors.New("repository: not found")
	ErrStatusRegression    = errors.New("repository: recording status may only move forward")
	ErrDuplicateTranscript = errors.New("repository: transcript already exists for recording")
)

// RecordingUpdate carries the fields to merge over an existing recording.
// Nil fields are left untouched (shallow merge, last-write-wins).
type RecordingUpdate struct {
	Status *constant.RecordingStatus
	Error  *string
}

// StatusUpdate carries the fields to merge over the pipeline status.
type StatusUpdate struct {
	TotalFiles        *int
	TranscribedFiles  *int
	LecturesGenerated *int
	Phase             *constant.Phase
	Error             *string
}

// Store is the single source of truth for one pipeline run. It is volatile:
// contents live exactly as long as the process. All operations are
// synchronous and safe for concurrent use.
type Store interface {
	AddRecording(rec entities.Recording)
	GetRecording(id uuid.UUID) (entities.Recording, error)
	UpdateRecording(id uuid.UUID, update RecordingUpdate) error
	ListRecordings() []entities.Recording
	FindRecordingByHash(hash string) (entities.Recording, bool)
	ClearRecordings()

	AddTranscript(t entities.Transcript) error
	GetTranscript(recordingID uuid.UUID) (entities.Transcript, error)
	ListTranscripts() []entities.Transcript
	ClearTranscripts()

	ReplaceLectures(lectures []entities.Lecture)
	GetLecture(id uuid.UUID) (entities.Lecture, error)
	ListLectures() []entities.Lecture
	ClearLectures()

	AddScript(s entities.PodcastScript)
	ListScriptsByLecture(lectureID uuid.UUID) []entities.PodcastScript
	ClearScripts()

	Status() entities.PipelineStatus
	UpdateStatus(update StatusUpdate)

	Reset()
}

type memoryStore struct {
	mu          sync.RWMutex
	recordings  map[uuid.UUID]entities.Recording
	transcripts map[uuid.UUID]entities.Transcript
	lectures    map[uuid.UUID]entities.Lecture
	scripts     map[uuid.UUID][]entities.PodcastScript
	status      entities.PipelineStatus
}

func NewStore() Store {
	return &memoryStore{
		recordings:  map[uuid.UUID]entities.Recording{},
		transcripts: map[uuid.UUID]entities.Transcript{},
		lectures:    map[uuid.UUID]entities.Lecture{},
		scripts:     map[uuid.UUID][]entities.PodcastScript{},
		status:      entities.PipelineStatus{Phase: constant.PhaseIdle},
	}
}

func (s *memoryStore) AddRecording(rec entities.Recording) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings[rec.ID] = rec
}

func (s *memoryStore) GetRecording(id uuid.UUID) (entities.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recordings[id]
	if !ok {
		return entities.Recording{}, ErrNotFound
	}
	return rec, nil
}

func (s *memoryStore) UpdateRecording(id uuid.UUID, update RecordingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[id]
	if !ok {
		return ErrNotFound
	}
	if update.Status != nil {
		if !rec.Status.CanTransitionTo(*update.Status) {
			return ErrStatusRegression
		}
		rec.Status = *update.Status
	}
	if update.Error != nil {
		rec.Error = *update.Error
	}
	s.recordings[id] = rec
	return nil
}

func (s *memoryStore) ListRecordings() []entities.Recording {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Recording, 0, len(s.recordings))
	for _, rec := range s.recordings {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].OriginalName < out[j].OriginalName
	})
	return out
}

func (s *memoryStore) FindRecordingByHash(hash string) (entities.Recording, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.recordings {
		if rec.ContentHash == hash {
			return rec, true
		}
	}
	return entities.Recording{}, false
}

func (s *memoryStore) ClearRecordings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings = map[uuid.UUID]entities.Recording{}
}

func (s *memoryStore) AddTranscript(t entities.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recordings[t.RecordingID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.transcripts[t.RecordingID]; ok {
		return ErrDuplicateTranscript
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.transcripts[t.RecordingID] = t
	return nil
}

func (s *memoryStore) GetTranscript(recordingID uuid.UUID) (entities.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transcripts[recordingID]
	if !ok {
		return entities.Transcript{}, ErrNotFound
	}
	return t, nil
}

func (s *memoryStore) ListTranscripts() []entities.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Transcript, 0, len(s.transcripts))
	for _, t := range s.transcripts {
		out = append(out, t)
	}
	return out
}

func (s *memoryStore) ClearTranscripts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = map[uuid.UUID]entities.Transcript{}
}

// ReplaceLectures drops the entire existing lecture set before inserting the
// new one. Grouping is a batch replace: no partial set is ever visible.
func (s *memoryStore) ReplaceLectures(lectures []entities.Lecture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lectures = map[uuid.UUID]entities.Lecture{}
	for _, l := range lectures {
		s.lectures[l.ID] = l
	}
}

func (s *memoryStore) GetLecture(id uuid.UUID) (entities.Lecture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lectures[id]
	if !ok {
		return entities.Lecture{}, ErrNotFound
	}
	return l, nil
}

func (s *memoryStore) ListLectures() []entities.Lecture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Lecture, 0, len(s.lectures))
	for _, l := range s.lectures {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (s *memoryStore) ClearLectures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lectures = map[uuid.UUID]entities.Lecture{}
}

func (s *memoryStore) AddScript(script entities.PodcastScript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[script.LectureID] = append(s.scripts[script.LectureID], script)
}

func (s *memoryStore) ListScriptsByLecture(lectureID uuid.UUID) []entities.PodcastScript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scripts := s.scripts[lectureID]
	out := make([]entities.PodcastScript, len(scripts))
	copy(out, scripts)
	return out
}

func (s *memoryStore) ClearScripts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = map[uuid.UUID][]entities.PodcastScript{}
}

func (s *memoryStore) Status() entities.PipelineStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *memoryStore) UpdateStatus(update StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if update.TotalFiles != nil {
		s.status.TotalFiles = *update.TotalFiles
	}
	if update.TranscribedFiles != nil {
		s.status.TranscribedFiles = *update.TranscribedFiles
	}
	if update.LecturesGenerated != nil {
		s.status.LecturesGenerated = *update.LecturesGenerated
	}
	if update.Phase != nil {
		s.status.Phase = *update.Phase
	}
	if update.Error != nil {
		s.status.Error = *update.Error
	}
}

// Reset clears every collection and returns the status to idle.
func (s *memoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings = map[uuid.UUID]entities.Recording{}
	s.transcripts = map[uuid.UUID]entities.Transcript{}
	s.lectures = map[uuid.UUID]entities.Lecture{}
	s.scripts = map[uuid.UUID][]entities.PodcastScript{}
	s.status = entities.PipelineStatus{Phase: constant.PhaseIdle}
}
