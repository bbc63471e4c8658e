// Package gemini wraps the Gemini API for the two generation tasks the
// pipeline delegates: grouping transcribed recordings into lectures and
// writing podcast scripts from a lecture transcript. Responses are parsed
// structurally only; the model's judgement is taken as-is.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const groupingPrompt = `You are organizing a student's voice notes into lectures.
Below is a JSON array of transcribed recordings in chronological order. Group
consecutive recordings that belong to the same lecture or study session.

Respond with ONLY a JSON array, no prose, in this exact shape:
[{"number": 1, "title": "...", "summary": "...", "topics": ["..."], "recording_ids": ["..."]}]

Rules:
- Every recording id must appear in exactly one group.
- Keep the chronological order: group 1 holds the earliest recordings.
- Titles are short and descriptive; summaries are 1-3 sentences.

Recordings:
%s`

const scriptPrompt = `You are a podcast script writer. Turn the lecture
transcript below into a %s.

Respond with ONLY a JSON object, no prose, in this exact shape:
{"title": "...", "description": "...", "script": "..."}

The script field holds the full script text. Speaker turns are prefixed with
the speaker name and a colon.

Lecture title: %s

Transcript:
---
%s
---`

var scriptStyles = map[string]string{
	"qa":         "question-and-answer episode where a curious host interviews an expert about the material",
	"narrative":  "single-narrator episode that retells the material as an engaging story",
	"discussion": "two-host conversational episode where the hosts discuss and debate the material",
}

// ErrBadResponse is returned when the model's output cannot be parsed into
// the requested shape.
var ErrBadResponse = errors.New("gemini: response is not in the requested shape")

type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// GroupingItem is one transcribed recording as presented to the model.
type GroupingItem struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	RecordedAt time.Time `json:"recorded_at"`
	Transcript string    `json:"transcript"`
}

// LectureGroup is one group in the model's grouping answer.
type LectureGroup struct {
	Number       int      `json:"number"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Topics       []string `json:"topics"`
	RecordingIDs []string `json:"recording_ids"`
}

// ScriptResult is the model's podcast script answer.
type ScriptResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Script      string `json:"script"`
}

// GroupIntoLectures asks the model to partition the ordered recordings into
// lectures. Items must already be in chronological order.
func (c *Client) GroupIntoLectures(ctx context.Context, items []GroupingItem) ([]LectureGroup, error) {
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("gemini: encode recordings: %w", err)
	}

	text, err := c.generate(ctx, fmt.Sprintf(groupingPrompt, payload))
	if err != nil {
		return nil, err
	}

	raw, ok := extractJSON(text, '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array in %q", ErrBadResponse, clip(text))
	}
	var groups []LectureGroup
	if err := json.Unmarshal([]byte(raw), &groups); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: empty group list", ErrBadResponse)
	}
	return groups, nil
}

// GeneratePodcastScript turns a lecture transcript into a script in the
// given format. format must be one of qa, narrative, discussion.
func (c *Client) GeneratePodcastScript(ctx context.Context, title, transcript, format string) (*ScriptResult, error) {
	style, ok := scriptStyles[format]
	if !ok {
		return nil, fmt.Errorf("gemini: unknown script format %q", format)
	}

	text, err := c.generate(ctx, fmt.Sprintf(scriptPrompt, style, title, transcript))
	if err != nil {
		return nil, err
	}

	raw, ok := extractJSON(text, '{', '}')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrBadResponse, clip(text))
	}
	var result ScriptResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if result.Script == "" {
		return nil, fmt.Errorf("%w: empty script", ErrBadResponse)
	}
	return &result, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// extractJSON returns the outermost open..close slice of s. Models often
// wrap answers in code fences or lead-in prose; everything outside the
// brackets is discarded.
func extractJSON(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func clip(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
