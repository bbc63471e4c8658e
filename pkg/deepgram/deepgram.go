// Package deepgram is a thin client for a Deepgram-style speech-to-text API:
// raw audio bytes in, a transcript with word-level timings out.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const DefaultBaseURL = "https://api.deepgram.com"

// ErrNoTranscript is returned when the service answered but produced no
// usable alternative. The pipeline treats this as a hard failure for the
// recording in question.
var ErrNoTranscript = errors.New("deepgram: response contains no transcript")

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = "nova-2"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *int    `json:"speaker,omitempty"`
}

type Paragraph struct {
	Speaker *int    `json:"speaker,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

type Result struct {
	Text       string
	Confidence float64
	Duration   float64
	Words      []Word
	Paragraphs []Paragraph
}

type sentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type paragraphEntry struct {
	Speaker   *int       `json:"speaker,omitempty"`
	Start     float64    `json:"start"`
	End       float64    `json:"end"`
	Sentences []sentence `json:"sentences"`
}

type response struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []Word  `json:"words"`
				Paragraphs struct {
					Paragraphs []paragraphEntry `json:"paragraphs"`
				} `json:"paragraphs"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends raw audio bytes with a media-type hint and returns the
// first alternative of the first channel. 5xx and transport errors are
// retried with exponential backoff; 4xx are not.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/v1/listen?%s", c.baseURL, url.Values{
		"model":        {c.model},
		"punctuate":    {"true"},
		"diarize":      {"true"},
		"paragraphs":   {"true"},
		"smart_format": {"true"},
	}.Encode())

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Token "+c.apiKey)
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("deepgram: server error %d: %s", resp.StatusCode, body)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("deepgram: request rejected %d: %s", resp.StatusCode, body))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 90 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("deepgram: decode response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return nil, ErrNoTranscript
	}
	alt := parsed.Results.Channels[0].Alternatives[0]
	if alt.Transcript == "" {
		return nil, ErrNoTranscript
	}

	res := &Result{
		Text:       alt.Transcript,
		Confidence: alt.Confidence,
		Duration:   parsed.Metadata.Duration,
		Words:      alt.Words,
	}
	for _, p := range alt.Paragraphs.Paragraphs {
		var text string
		for i, s := range p.Sentences {
			if i > 0 {
				text += " "
			}
			text += s.Text
		}
		res.Paragraphs = append(res.Paragraphs, Paragraph{
			Speaker: p.Speaker,
			Start:   p.Start,
			End:     p.End,
			Text:    text,
		})
	}
	return res, nil
}
