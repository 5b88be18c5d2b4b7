package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/whoskite/kitestudios-sub000/internal/domain"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
	"github.com/whoskite/kitestudios-sub000/pkg/logger"
	"github.com/whoskite/kitestudios-sub000/pkg/telemetry"
)

const (
	apiVersion     = "2023-06-01"
	defaultTimeout = 60 * time.Second
)

// Message is one turn of the conversation, as resent by the client.
// No history is kept server-side; the caller sends the full transcript each time.
type Message struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Result is a single completion
type Result struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type completionResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Service proxies chat messages to the external completion API. It is
// stateless between calls and performs no retries.
type Service struct {
	cfg  config.ChatConfig
	http *http.Client
	now  func() time.Time
}

// NewService creates the chat proxy service with an explicit upstream timeout
func NewService(cfg config.ChatConfig) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Service{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		now:  time.Now,
	}
}

// Complete forwards the history plus the new user message to the completion
// API and returns the first completion's text.
//
// The session check runs before anything else: no outbound call is ever made
// for an unauthenticated request. Upstream failures map to ErrProcessing with
// the real error logged server-side and never relayed to the client.
func (s *Service) Complete(ctx context.Context, sess *domain.Session, message string, history []Message) (*Result, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	if s.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: completion API key is not set", domain.ErrConfiguration)
	}

	ctx, span := telemetry.StartSpan(ctx, "chat.complete")
	defer span.End()

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: message})

	payload, err := json.Marshal(completionRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    s.cfg.SystemPrompt,
		Messages:  messages,
	})
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessing, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.http.Do(req)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		logger.Error("completion API request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrProcessing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Error("completion API returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrProcessing, resp.StatusCode)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProcessing, err)
	}
	if len(completion.Content) == 0 {
		return nil, fmt.Errorf("%w: empty completion", domain.ErrProcessing)
	}

	return &Result{
		Response:  completion.Content[0].Text,
		Timestamp: s.now(),
	}, nil
}
