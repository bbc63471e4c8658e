package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lecturecast/constant"
	"lecturecast/dto"
	"lecturecast/entities"
	"lecturecast/pkg/queue"
	"lecturecast/repository"
)

// Transcribe runs every uploaded recording through the speech-to-text
// service, one at a time, so the status record advances after each file.
// A failing recording is marked and the batch continues. When the batch
// ends, no recording is left in the transcribing status and the phase is
// processing.
func (s *service) Transcribe(ctx context.Context) (*dto.TranscribeResponse, error) {
	log := zerolog.Ctx(ctx)

	if s.stt == nil {
		return nil, fmt.Errorf("%w: speech-to-text api key is missing", ErrNotConfigured)
	}
	if !s.acquireRun() {
		return nil, ErrConflict
	}
	defer s.releaseRun()

	var pending []entities.Recording
	for _, rec := range s.store.ListRecordings() {
		if rec.Status == constant.RecordingStatusUploaded {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("%w: no uploaded recordings to transcribe", ErrValidation)
	}

	phase := constant.PhaseTranscribing
	s.store.UpdateStatus(repository.StatusUpdate{Phase: &phase})

	resp := &dto.TranscribeResponse{}
	var respMu sync.Mutex
	q := queue.New[entities.Recording, *service](s.cfg.Server.Workers, transcribeOne)
	runErr := q.Run(ctx, pending, s, func(rec entities.Recording, err error) {
		respMu.Lock()
		defer respMu.Unlock()
		if err != nil {
			resp.Failed++
			log.Warn().Err(err).
				Str("recording_id", rec.ID.String()).
				Str("filename", rec.OriginalName).
				Msg("transcription failed")
		} else {
			resp.Transcribed++
			log.Info().
				Str("recording_id", rec.ID.String()).
				Str("filename", rec.OriginalName).
				Msg("transcription completed")
		}
		s.refreshCounters()
	})

	if runErr != nil {
		msg := runErr.Error()
		phase = constant.PhaseError
		s.store.UpdateStatus(repository.StatusUpdate{Phase: &phase, Error: &msg})
		return resp, runErr
	}

	phase = constant.PhaseProcessing
	s.store.UpdateStatus(repository.StatusUpdate{Phase: &phase})
	s.refreshCounters()
	return resp, nil
}

// transcribeOne moves a single recording through transcribing to
// transcribed or error. Its error return feeds progress reporting only;
// the recording itself always ends in a terminal status.
func transcribeOne(ctx context.Context, rec entities.Recording, s *service) error {
	status := constant.RecordingStatusTranscribing
	if err := s.store.UpdateRecording(rec.ID, repository.RecordingUpdate{Status: &status}); err != nil {
		return err
	}

	audio, err := s.objects.Get(ctx, rec.ObjectName)
	if err != nil {
		return s.failRecording(rec, fmt.Errorf("fetch audio: %w", err))
	}

	result, err := s.stt.Transcribe(ctx, audio, rec.ContentType)
	if err != nil {
		return s.failRecording(rec, err)
	}

	transcript := entities.Transcript{
		RecordingID: rec.ID,
		Text:        result.Text,
		Confidence:  result.Confidence,
		Duration:    result.Duration,
		CreatedAt:   time.Now().UTC(),
	}
	for _, w := range result.Words {
		transcript.Words = append(transcript.Words, entities.Word{
			Word:       w.Word,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
			Speaker:    w.Speaker,
		})
	}
	for _, p := range result.Paragraphs {
		transcript.Paragraphs = append(transcript.Paragraphs, entities.Paragraph{
			Speaker: p.Speaker,
			Start:   p.Start,
			End:     p.End,
			Text:    p.Text,
		})
	}
	if err := s.store.AddTranscript(transcript); err != nil {
		return s.failRecording(rec, err)
	}

	status = constant.RecordingStatusTranscribed
	return s.store.UpdateRecording(rec.ID, repository.RecordingUpdate{Status: &status})
}

func (s *service) failRecording(rec entities.Recording, cause error) error {
	status := constant.RecordingStatusError
	msg := cause.Error()
	if err := s.store.UpdateRecording(rec.ID, repository.RecordingUpdate{Status: &status, Error: &msg}); err != nil {
		return err
	}
	return cause
}
