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

// GenerationService talks to an OpenAI-compatible chat completion endpoint
// and turns a week of reflections into toast prose.
type GenerationService struct {
	config config.AIConfig
	client *http.Client
}

func NewGenerationService(cfg config.AIConfig) *GenerationService {
	return &GenerationService{
		config: cfg,
		client: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const toastSystemPrompt = "You are a warm, sincere friend writing a short celebratory toast. " +
	"You receive one week of someone's personal daily reflections. Write a toast of 3-5 " +
	"sentences addressed to them in the second person, celebrating what they lived through " +
	"this week. Be specific to their notes, never invent events, and never quote the notes " +
	"verbatim. No hashtags, no emoji, no markdown."

// Generate returns the toast text for a composed prompt. The caller bounds
// the call with ctx; cancellation and timeouts surface as errors.
func (s *GenerationService) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: toastSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("generation API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("generation API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
