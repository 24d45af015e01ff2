package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
)

// WritingService is the "improve writing" assistant. It only suggests;
// nothing is stored until the caller saves the text explicitly.
type WritingService interface {
	// Improve returns a suggestion and true, or "" and false when the
	// assistant is not configured or fails.
	Improve(ctx context.Context, text string) (string, bool)
}

type writingService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWritingService creates a WritingService for cfg.
func NewWritingService(cfg *config.WritingConfig, logger *zap.Logger) WritingService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &writingService{
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type improveRequest struct {
	Text string `json:"text"`
}

type improveResponse struct {
	ImprovedText string `json:"improvedText"`
}

func (s *writingService) Improve(ctx context.Context, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	if s.endpoint == "" {
		s.logger.Debug("writing assistant not configured")
		return "", false
	}

	suggestion, err := s.call(ctx, text)
	if err != nil {
		s.logger.Warn("writing assistant failed", zap.Error(err))
		return "", false
	}
	return suggestion, true
}

func (s *writingService) call(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(improveRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant returned HTTP %d", resp.StatusCode)
	}

	var out improveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(out.ImprovedText) == "" {
		return "", fmt.Errorf("empty suggestion")
	}
	return out.ImprovedText, nil
}
