package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lecturecast/constant"
	"lecturecast/dto"
	"lecturecast/entities"
	"lecturecast/pkg/b3"
	"lecturecast/pkg/fileinfo"
	"lecturecast/repository"
)

// UploadFile is one file from a multipart upload request. ModTime is the
// client-reported last-modified time when available, otherwise the upload
// time; it is the recorded-at fallback when the filename carries no date.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
	ModTime     time.Time
}

var allowedContentTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/mp4":   true,
	"audio/m4a":   true,
	"audio/x-m4a": true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/wave":  true,
	"audio/ogg":   true,
	"audio/webm":  true,
	"audio/flac":  true,
	"audio/aac":   true,
}

// Upload validates and stores a batch of voice-note files. Validation runs
// over the whole batch before anything is stored: a single disallowed file
// rejects the request without mutating any state. Files whose content hash
// matches an existing recording are skipped, not errored.
func (s *service) Upload(ctx context.Context, files []UploadFile) (*dto.UploadResponse, error) {
	log := zerolog.Ctx(ctx)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files supplied", ErrValidation)
	}
	maxSize := s.cfg.Upload.MaxSizeMB * 1024 * 1024
	for _, f := range files {
		if !allowedContentTypes[f.ContentType] {
			return nil, fmt.Errorf("%w: unsupported media type %q for %q", ErrValidation, f.ContentType, f.Name)
		}
		if int64(len(f.Data)) > maxSize {
			return nil, fmt.Errorf("%w: %q exceeds the %dMB upload limit", ErrValidation, f.Name, s.cfg.Upload.MaxSizeMB)
		}
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("%w: %q is empty", ErrValidation, f.Name)
		}
	}

	resp := &dto.UploadResponse{}
	for _, f := range files {
		hash := b3.HashBytes(f.Data)
		if existing, ok := s.store.FindRecordingByHash(hash); ok {
			log.Info().Str("filename", f.Name).Str("duplicate_of", existing.ID.String()).Msg("skipping duplicate upload")
			resp.Skipped = append(resp.Skipped, dto.SkippedFile{
				Filename: f.Name,
				Reason:   fmt.Sprintf("duplicate of %s", existing.OriginalName),
			})
			continue
		}

		id := uuid.New()
		objectName := id.String() + filepath.Ext(f.Name)
		if err := s.objects.Put(ctx, objectName, f.Data, f.ContentType); err != nil {
			log.Error().Err(err).Str("filename", f.Name).Msg("failed to store upload")
			return nil, fmt.Errorf("store %q: %w", f.Name, err)
		}

		modTime := f.ModTime
		if modTime.IsZero() {
			modTime = time.Now().UTC()
		}
		recordedAt, source := fileinfo.RecordedAt(f.Name, modTime)

		rec := entities.Recording{
			ID:               id,
			OriginalName:     f.Name,
			ObjectName:       objectName,
			ContentType:      f.ContentType,
			Size:             int64(len(f.Data)),
			ContentHash:      hash,
			RecordedAt:       recordedAt,
			RecordedAtSource: entities.RecordedAtSource(source),
			UploadedAt:       time.Now().UTC(),
			Status:           constant.RecordingStatusUploaded,
		}
		s.store.AddRecording(rec)
		resp.Recordings = append(resp.Recordings, rec)

		log.Info().
			Str("recording_id", id.String()).
			Str("filename", f.Name).
			Str("recorded_at_source", string(source)).
			Msg("recording uploaded")
	}

	if len(resp.Recordings) > 0 {
		phase := constant.PhaseUploading
		s.store.UpdateStatus(repository.StatusUpdate{Phase: &phase})
	}
	s.refreshCounters()
	return resp, nil
}
