package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lecturecast/constant"
	"lecturecast/entities"
	"lecturecast/pkg/gemini"
	"lecturecast/repository"
)

// GroupLectures sends the ordered transcribed recordings to the model and
// replaces the lecture set with its answer. A failed or malformed model
// response leaves the existing lectures untouched; only the status phase
// moves to error.
func (s *service) GroupLectures(ctx context.Context) ([]entities.Lecture, error) {
	log := zerolog.Ctx(ctx)

	if s.model == nil {
		return nil, fmt.Errorf("%w: llm api key is missing", ErrNotConfigured)
	}
	if !s.acquireRun() {
		return nil, ErrConflict
	}
	defer s.releaseRun()

	var transcribed []entities.Recording
	for _, rec := range s.store.ListRecordings() {
		if rec.Status == constant.RecordingStatusTranscribed {
			transcribed = append(transcribed, rec)
		}
	}
	if len(transcribed) == 0 {
		return nil, fmt.Errorf("%w: no transcribed recordings to group", ErrValidation)
	}

	ordered := orderForGrouping(transcribed)

	items := make([]gemini.GroupingItem, 0, len(ordered))
	transcripts := make(map[uuid.UUID]entities.Transcript, len(ordered))
	for _, rec := range ordered {
		t, err := s.store.GetTranscript(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("transcript for %s: %w", rec.ID, err)
		}
		transcripts[rec.ID] = t
		items = append(items, gemini.GroupingItem{
			ID:         rec.ID.String(),
			Filename:   rec.OriginalName,
			RecordedAt: rec.RecordedAt,
			Transcript: t.Text,
		})
	}

	groups, err := s.model.GroupIntoLectures(ctx, items)
	if err != nil {
		s.failPhase(err)
		log.Error().Err(err).Msg("lecture grouping failed")
		return nil, fmt.Errorf("group lectures: %w", err)
	}

	byID := make(map[uuid.UUID]entities.Recording, len(ordered))
	position := make(map[uuid.UUID]int, len(ordered))
	for i, rec := range ordered {
		byID[rec.ID] = rec
		position[rec.ID] = i
	}

	var lectures []entities.Lecture
	for _, g := range groups {
		members := resolveMembers(g.RecordingIDs, byID, position)
		if len(members) == 0 {
			log.Warn().Int("group_number", g.Number).Msg("dropping lecture group with no known recordings")
			continue
		}

		var parts []string
		createdAt := time.Time{}
		ids := make([]uuid.UUID, 0, len(members))
		for _, rec := range members {
			ids = append(ids, rec.ID)
			parts = append(parts, transcripts[rec.ID].Text)
			if createdAt.IsZero() || rec.RecordedAt.Before(createdAt) {
				createdAt = rec.RecordedAt
			}
		}

		lectures = append(lectures, entities.Lecture{
			ID:             uuid.New(),
			Number:         g.Number,
			Title:          g.Title,
			Summary:        g.Summary,
			Topics:         g.Topics,
			RecordingIDs:   ids,
			FullTranscript: strings.Join(parts, "\n\n"),
			CreatedAt:      createdAt,
		})
	}
	if len(lectures) == 0 {
		err := fmt.Errorf("group lectures: %w: no group references a known recording", gemini.ErrBadResponse)
		s.failPhase(err)
		return nil, err
	}

	// The clear-then-rebuild happens only now, after a successful parse.
	s.store.ReplaceLectures(lectures)
	s.store.ClearScripts()

	phase := constant.PhaseComplete
	s.store.UpdateStatus(repository.StatusUpdate{Phase: &phase})
	s.refreshCounters()

	log.Info().Int("lectures", len(lectures)).Msg("grouping completed")
	return s.store.ListLectures(), nil
}

// resolveMembers maps the model's id strings onto known transcribed
// recordings, dropping ids it invented, and orders members by their
// position in the chronological sequence.
func resolveMembers(rawIDs []string, byID map[uuid.UUID]entities.Recording, position map[uuid.UUID]int) []entities.Recording {
	var members []entities.Recording
	seen := map[uuid.UUID]bool{}
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		rec, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, rec)
	}
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && position[members[j].ID] < position[members[j-1].ID]; j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}
	return members
}

// GenerateScript produces one podcast script for a lecture and appends it to
// the lecture's script history.
func (s *service) GenerateScript(ctx context.Context, lectureID uuid.UUID, format string) (*entities.PodcastScript, error) {
	log := zerolog.Ctx(ctx)

	if s.model == nil {
		return nil, fmt.Errorf("%w: llm api key is missing", ErrNotConfigured)
	}
	scriptFormat := constant.ScriptFormat(format)
	if !scriptFormat.Valid() {
		return nil, fmt.Errorf("%w: unknown script format %q", ErrValidation, format)
	}

	lecture, err := s.store.GetLecture(lectureID)
	if err != nil {
		return nil, err
	}

	result, err := s.model.GeneratePodcastScript(ctx, lecture.Title, lecture.FullTranscript, format)
	if err != nil {
		s.failPhase(err)
		log.Error().Err(err).Str("lecture_id", lectureID.String()).Msg("script generation failed")
		return nil, fmt.Errorf("generate script: %w", err)
	}

	script := entities.PodcastScript{
		ID:          uuid.New(),
		LectureID:   lectureID,
		Format:      scriptFormat,
		Title:       result.Title,
		Description: result.Description,
		Script:      result.Script,
		GeneratedAt: time.Now().UTC(),
	}
	s.store.AddScript(script)

	log.Info().
		Str("lecture_id", lectureID.String()).
		Str("format", format).
		Msg("podcast script generated")
	return &script, nil
}

func (s *service) failPhase(cause error) {
	phase := constant.PhaseError
	msg := cause.Error()
	s.store.UpdateStatus(repository.StatusUpdate{Phase: &phase, Error: &msg})
}
