package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"toast_backend/internal/config"
)

// SpeechService narrates toast text through a text-to-speech endpoint and
// returns the raw audio bytes (mp3).
type SpeechService struct {
	config config.SpeechConfig
	client *http.Client
}

func NewSpeechService(cfg config.SpeechConfig) *SpeechService {
	return &SpeechService{
		config: cfg,
		client: &http.Client{},
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// Synthesize renders text with the given voice; an empty voice falls back to
// the configured default.
func (s *SpeechService) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = s.config.DefaultVoice
	}

	jsonData, err := json.Marshal(speechRequest{
		Model: s.config.Model,
		Input: text,
		Voice: voice,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/audio/speech", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speech API error (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech API returned empty audio")
	}

	return audio, nil
}
