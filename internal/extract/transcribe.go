// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxAudioSize caps uploads to the transcription endpoint.
const MaxAudioSize = 25 << 20 // 25 MiB

// Transcriber extracts text from audio attachments through a remote
// speech-to-text endpoint.
type Transcriber struct {
	endpoint string
	client   *http.Client
}

// NewTranscriber creates a transcriber for the given endpoint.
func NewTranscriber(endpoint string) *Transcriber {
	return &Transcriber{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (t *Transcriber) Supports(kind, _ string) bool {
	return kind == "audio"
}

// Extract uploads the audio and returns the transcription.
func (t *Transcriber) Extract(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) > MaxAudioSize {
		return "", fmt.Errorf("%s (%d bytes): %w", name, len(data), ErrTooLarge)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-File-Name", name)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription failed: HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse transcription response: %w", err)
	}
	return parsed.Text, nil
}
