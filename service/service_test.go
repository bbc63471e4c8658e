package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"lecturecast/config"
	"lecturecast/constant"
	"lecturecast/pkg/deepgram"
	"lecturecast/pkg/gemini"
	"lecturecast/repository"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Put(_ context.Context, name string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[name] = data
	return nil
}

func (f *fakeObjects) Get(_ context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[name]
	if !ok {
		return nil, fmt.Errorf("no object %q", name)
	}
	return data, nil
}

func (f *fakeObjects) Remove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	return nil
}

func (f *fakeObjects) RemoveAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = map[string][]byte{}
	return nil
}

// fakeSTT fails any audio whose payload contains "bad".
type fakeSTT struct{}

func (fakeSTT) Transcribe(_ context.Context, audio []byte, _ string) (*deepgram.Result, error) {
	if strings.Contains(string(audio), "bad") {
		return nil, deepgram.ErrNoTranscript
	}
	return &deepgram.Result{
		Text:       "transcript of " + string(audio),
		Confidence: 0.9,
		Duration:   10,
	}, nil
}

type fakeModel struct {
	groupFn  func(items []gemini.GroupingItem) ([]gemini.LectureGroup, error)
	scriptFn func(title, transcript, format string) (*gemini.ScriptResult, error)
}

func (m *fakeModel) GroupIntoLectures(_ context.Context, items []gemini.GroupingItem) ([]gemini.LectureGroup, error) {
	return m.groupFn(items)
}

func (m *fakeModel) GeneratePodcastScript(_ context.Context, title, transcript, format string) (*gemini.ScriptResult, error) {
	if m.scriptFn == nil {
		return &gemini.ScriptResult{Title: "ep", Description: "d", Script: "s"}, nil
	}
	return m.scriptFn(title, transcript, format)
}

// groupAllIntoOne puts every presented recording into a single lecture.
func groupAllIntoOne(items []gemini.GroupingItem) ([]gemini.LectureGroup, error) {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return []gemini.LectureGroup{{
		Number:       1,
		Title:        "Lecture One",
		Summary:      "everything",
		Topics:       []string{"all"},
		RecordingIDs: ids,
	}}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Validate()
	return cfg
}

func newTestService(t *testing.T, model LectureModel) (Service, repository.Store) {
	t.Helper()
	store := repository.NewStore()
	svc := New(store, newFakeObjects(), fakeSTT{}, model, testConfig())
	return svc, store
}

func upload(t *testing.T, svc Service, files ...UploadFile) {
	t.Helper()
	if _, err := svc.Upload(context.Background(), files); err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func audioFile(name, payload string) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: "audio/mpeg",
		Data:        []byte(payload),
		ModTime:     time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUploadRejectsDisallowedTypeBeforeAnyMutation(t *testing.T) {
	svc, store := newTestService(t, nil)

	_, err := svc.Upload(context.Background(), []UploadFile{
		audioFile("first.mp3", "one"),
		{Name: "notes.pdf", ContentType: "application/pdf", Data: []byte("x")},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if n := len(store.ListRecordings()); n != 0 {
		t.Errorf("recordings = %d, want 0 (no mutation on validation failure)", n)
	}
	if got := store.Status().Phase; got != constant.PhaseIdle {
		t.Errorf("phase = %v, want idle", got)
	}
}

func TestUploadRejectsEmptyBatch(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, err := svc.Upload(context.Background(), nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUploadSkipsDuplicateContent(t *testing.T) {
	svc, store := newTestService(t, nil)

	upload(t, svc, audioFile("a.mp3", "same-bytes"))
	resp, err := svc.Upload(context.Background(), []UploadFile{audioFile("b.mp3", "same-bytes")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if len(resp.Recordings) != 0 || len(resp.Skipped) != 1 {
		t.Errorf("resp = %+v, want one skipped duplicate", resp)
	}
	if n := len(store.ListRecordings()); n != 1 {
		t.Errorf("recordings = %d, want 1", n)
	}
}

func TestUploadSetsPhaseAndCounters(t *testing.T) {
	svc, _ := newTestService(t, nil)
	upload(t, svc, audioFile("a.mp3", "one"), audioFile("b.mp3", "two"))

	status := svc.Status()
	if status.Phase != constant.PhaseUploading {
		t.Errorf("phase = %v, want uploading", status.Phase)
	}
	if status.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", status.TotalFiles)
	}
}

func TestTranscribeBatchContinuesPastFailures(t *testing.T) {
	svc, store := newTestService(t, nil)
	upload(t, svc,
		audioFile("2024-01-15_a.mp3", "good one"),
		audioFile("2024-01-15_b.mp3", "bad audio"),
		audioFile("2024-01-15_c.mp3", "good two"),
	)

	resp, err := svc.Transcribe(context.Background())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Transcribed != 2 || resp.Failed != 1 {
		t.Errorf("resp = %+v, want 2 transcribed / 1 failed", resp)
	}

	status := svc.Status()
	if status.Phase != constant.PhaseProcessing {
		t.Errorf("phase = %v, want processing after every recording leaves transcribing", status.Phase)
	}
	if status.TranscribedFiles != 2 {
		t.Errorf("TranscribedFiles = %d, want 2", status.TranscribedFiles)
	}

	for _, rec := range store.ListRecordings() {
		switch rec.Status {
		case constant.RecordingStatusTranscribed:
			if _, err := store.GetTranscript(rec.ID); err != nil {
				t.Errorf("transcribed recording %s has no transcript", rec.OriginalName)
			}
		case constant.RecordingStatusError:
			if rec.Error == "" {
				t.Errorf("errored recording %s carries no message", rec.OriginalName)
			}
		default:
			t.Errorf("recording %s left in status %v", rec.OriginalName, rec.Status)
		}
	}
}

func TestTranscribeRequiresConfiguredSTT(t *testing.T) {
	store := repository.NewStore()
	svc := New(store, newFakeObjects(), nil, nil, testConfig())

	if _, err := svc.Transcribe(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestTranscribeRequiresUploadedRecordings(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, err := svc.Transcribe(context.Background()); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestGroupLecturesReplacesSetAndCompletes(t *testing.T) {
	model := &fakeModel{groupFn: groupAllIntoOne}
	svc, _ := newTestService(t, model)
	upload(t, svc, audioFile("2024-01-15_a.mp3", "one"), audioFile("2024-01-15_b.mp3", "two"))
	if _, err := svc.Transcribe(context.Background()); err != nil {
		t.Fatal(err)
	}

	lectures, err := svc.GroupLectures(context.Background())
	if err != nil {
		t.Fatalf("GroupLectures: %v", err)
	}
	if len(lectures) != 1 {
		t.Fatalf("lectures = %d, want 1", len(lectures))
	}
	if len(lectures[0].RecordingIDs) != 2 {
		t.Errorf("members = %d, want 2", len(lectures[0].RecordingIDs))
	}
	if !strings.Contains(lectures[0].FullTranscript, "transcript of one") {
		t.Errorf("FullTranscript = %q missing member text", lectures[0].FullTranscript)
	}

	status := svc.Status()
	if status.Phase != constant.PhaseComplete {
		t.Errorf("phase = %v, want complete", status.Phase)
	}
	if status.LecturesGenerated != 1 {
		t.Errorf("LecturesGenerated = %d, want 1", status.LecturesGenerated)
	}
}

func TestGroupLecturesDropsUnknownModelIDs(t *testing.T) {
	model := &fakeModel{groupFn: func(items []gemini.GroupingItem) ([]gemini.LectureGroup, error) {
		return []gemini.LectureGroup{{
			Number:       1,
			Title:        "Lecture",
			RecordingIDs: []string{items[0].ID, uuid.NewString(), "not-a-uuid"},
		}}, nil
	}}
	svc, _ := newTestService(t, model)
	upload(t, svc, audioFile("2024-01-15_a.mp3", "one"))
	if _, err := svc.Transcribe(context.Background()); err != nil {
		t.Fatal(err)
	}

	lectures, err := svc.GroupLectures(context.Background())
	if err != nil {
		t.Fatalf("GroupLectures: %v", err)
	}
	if len(lectures[0].RecordingIDs) != 1 {
		t.Errorf("members = %d, want only the known recording", len(lectures[0].RecordingIDs))
	}
}

func TestGroupLecturesFailureLeavesPriorLectures(t *testing.T) {
	calls := 0
	model := &fakeModel{groupFn: func(items []gemini.GroupingItem) ([]gemini.LectureGroup, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("model unavailable")
		}
		return groupAllIntoOne(items)
	}}
	svc, store := newTestService(t, model)
	upload(t, svc, audioFile("2024-01-15_a.mp3", "one"))
	if _, err := svc.Transcribe(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GroupLectures(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.GroupLectures(context.Background())
	if err == nil {
		t.Fatal("expected grouping failure")
	}

	if n := len(store.ListLectures()); n != 1 {
		t.Errorf("lectures = %d, want prior set untouched", n)
	}
	status := svc.Status()
	if status.Phase != constant.PhaseError || status.Error == "" {
		t.Errorf("status = %+v, want error phase with message", status)
	}
}

func TestGenerateScriptAppendsHistory(t *testing.T) {
	model := &fakeModel{groupFn: groupAllIntoOne}
	svc, _ := newTestService(t, model)
	upload(t, svc, audioFile("2024-01-15_a.mp3", "one"))
	if _, err := svc.Transcribe(context.Background()); err != nil {
		t.Fatal(err)
	}
	lectures, err := svc.GroupLectures(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	lectureID := lectures[0].ID

	if _, err := svc.GenerateScript(context.Background(), lectureID, "qa"); err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if _, err := svc.GenerateScript(context.Background(), lectureID, "narrative"); err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}

	scripts, err := svc.ListScripts(lectureID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 2 {
		t.Errorf("scripts = %d, want append-only history of 2", len(scripts))
	}
}

func TestGenerateScriptRejectsUnknownFormat(t *testing.T) {
	model := &fakeModel{groupFn: groupAllIntoOne}
	svc, _ := newTestService(t, model)

	_, err := svc.GenerateScript(context.Background(), uuid.New(), "freestyle")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestGenerateScriptUnknownLecture(t *testing.T) {
	model := &fakeModel{groupFn: groupAllIntoOne}
	svc, _ := newTestService(t, model)

	_, err := svc.GenerateScript(context.Background(), uuid.New(), "qa")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResetReturnsPipelineToIdle(t *testing.T) {
	model := &fakeModel{groupFn: groupAllIntoOne}
	svc, store := newTestService(t, model)
	upload(t, svc, audioFile("2024-01-15_a.mp3", "one"))
	if _, err := svc.Transcribe(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := svc.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if n := len(store.ListRecordings()); n != 0 {
		t.Errorf("recordings = %d after reset", n)
	}
	status := svc.Status()
	if status.Phase != constant.PhaseIdle || status.TotalFiles != 0 {
		t.Errorf("status = %+v, want idle zeroes", status)
	}
}

func TestExportLectures(t *testing.T) {
	model := &fakeModel{groupFn: groupAllIntoOne}
	svc, _ := newTestService(t, model)
	upload(t, svc, audioFile("2024-01-15_a.mp3", "one"))
	if _, err := svc.Transcribe(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GroupLectures(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := svc.ExportLectures()
	if err != nil {
		t.Fatalf("ExportLectures: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty workbook")
	}
}

func TestExportLecturesWithoutLectures(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, err := svc.ExportLectures(); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
