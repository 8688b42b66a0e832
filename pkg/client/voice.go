package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// VoiceService extracts project data from walkthroughs
type VoiceService struct {
	client *Client
}

// ExtractRequest is a transcript extraction request
type ExtractRequest struct {
	Transcript string `json:"transcript"`
	Trade      string `json:"trade,omitempty"`
	Locale     string `json:"locale,omitempty"`
}

// Extract sends a transcript for extraction
func (s *VoiceService) Extract(ctx context.Context, req ExtractRequest) (*Extraction, error) {
	var out Extraction
	if err := s.client.doRequest(ctx, "POST", "/api/voice/extract", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractAudio uploads a recording for transcription and extraction
func (s *VoiceService) ExtractAudio(ctx context.Context, filename string, audio io.Reader, trade, locale string) (*Extraction, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range map[string]string{"trade": trade, "locale": locale} {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.client.baseURL+"/api/voice/extract", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Extraction
	if err := s.client.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the voice backend. An unreachable backend returns its status
// together with the 503 APIError.
func (s *VoiceService) Health(ctx context.Context) (*VoiceHealth, error) {
	var out VoiceHealth
	err := s.client.doRequest(ctx, "GET", "/api/voice/health", nil, &out)
	if err == nil {
		return &out, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsUnavailable() && len(apiErr.Details) > 0 {
		if jsonErr := json.Unmarshal(apiErr.Details, &out); jsonErr == nil {
			return &out, err
		}
	}
	return nil, err
}
