// Package transcribe integrates a speech-to-text collaborator. Transcription
// is purely additive metadata for audio entries and never blocks persistence.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Transcriber converts a binary audio payload to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mime string) (string, error)
}

// Client talks to a speech-to-text HTTP service. The request body is the raw
// audio payload; the response is a JSON object carrying the decoded text.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given transcription service base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// transcriptionResponse mirrors the JSON returned by POST /v1/transcriptions.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends the audio payload for transcription and returns the
// decoded text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/transcriptions", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mime)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach transcription service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription service returned status %d", resp.StatusCode)
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	return result.Text, nil
}
