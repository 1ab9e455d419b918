package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/features"
	"github.com/google/uuid"
)

const (
	maxAssistantInput = 4000
	maxHistory        = 20
	sessionIdleTTL    = 24 * time.Hour
)

// ChatSession is one assistant conversation. The first history entry is
// always the feature's system instruction.
type ChatSession struct {
	ID        string
	OwnerID   string
	Feature   string
	History   []llmMessage
	UpdatedAt time.Time
}

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type llmProvider struct {
	name   string
	apiURL string
	apiKey string
	model  string
}

// AssistantService runs feature-scoped chat sessions against
// OpenAI-compatible providers, GLM first and DeepSeek as fallback.
type AssistantService struct {
	cfg      *config.Config
	registry *features.Registry
	client   *http.Client
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*ChatSession
}

func NewAssistantService(cfg *config.Config, registry *features.Registry) *AssistantService {
	timeout := cfg.AITimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &AssistantService{
		cfg:      cfg,
		registry: registry,
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
		sessions: make(map[string]*ChatSession),
	}
}

// CreateSession starts a conversation for feature owned by ownerID.
func (s *AssistantService) CreateSession(ownerID, feature string) (*ChatSession, error) {
	feature = strings.ToUpper(strings.TrimSpace(feature))
	if feature == "" {
		feature = features.ContentAssistant
	}
	if !s.registry.Exists(feature) {
		return nil, fmt.Errorf("%w: unknown assistant feature %q", ErrInvalidInput, feature)
	}

	session := &ChatSession{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Feature: feature,
		History: []llmMessage{
			{Role: "system", Content: s.registry.SystemInstruction(feature)},
		},
		UpdatedAt: s.now(),
	}

	s.mu.Lock()
	s.pruneLocked()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session, nil
}

// SendMessage appends message to the session and returns the reply along
// with the name of the provider that produced it. contextText, when set, is
// prepended to the user turn.
func (s *AssistantService) SendMessage(ctx context.Context, ownerID, sessionID, message, contextText string) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len(message)+len(contextText) > maxAssistantInput {
		return "", "", fmt.Errorf("%w: message too long (max %d characters)", ErrInvalidInput, maxAssistantInput)
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.OwnerID != ownerID {
		s.mu.Unlock()
		return "", "", ErrSessionNotFound
	}
	history := append([]llmMessage(nil), session.History...)
	feature := session.Feature
	s.mu.Unlock()

	turn := message
	if c := strings.TrimSpace(contextText); c != "" {
		turn = "Context:\n" + c + "\n\n" + message
	}
	history = append(history, llmMessage{Role: "user", Content: turn})

	reply, provider, err := s.callLLM(ctx, feature, history)
	if err != nil {
		slog.Error("assistant reply failed", "action", "assistant_message", "user_id", ownerID, "feature", feature, "error", err)
		return "", "", err
	}

	s.mu.Lock()
	if current, ok := s.sessions[sessionID]; ok {
		current.History = trimHistory(append(history, llmMessage{Role: "assistant", Content: reply}))
		current.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	return reply, provider, nil
}

func (s *AssistantService) providers() []llmProvider {
	var list []llmProvider
	if s.cfg.GLMAPIKey != "" {
		list = append(list, llmProvider{name: "glm", apiURL: s.cfg.GLMAPIURL, apiKey: s.cfg.GLMAPIKey, model: s.cfg.GLMModel})
	}
	if s.cfg.DeepSeekAPIKey != "" {
		list = append(list, llmProvider{name: "deepseek", apiURL: s.cfg.DeepSeekAPIURL, apiKey: s.cfg.DeepSeekAPIKey, model: s.cfg.DeepSeekModel})
	}
	return list
}

func (s *AssistantService) callLLM(ctx context.Context, feature string, history []llmMessage) (string, string, error) {
	providers := s.providers()
	if len(providers) == 0 {
		return "", "", fmt.Errorf("%w: no assistant provider configured", ErrUpstream)
	}

	temperature, maxTokens := 0.7, 1024
	if f := s.registry.Get(feature); f != nil {
		if f.Temperature > 0 {
			temperature = f.Temperature
		}
		if f.MaxTokens > 0 {
			maxTokens = f.MaxTokens
		}
	}

	var lastErr error
	for _, p := range providers {
		reply, err := s.callProvider(ctx, p, history, temperature, maxTokens)
		if err == nil {
			return reply, p.name, nil
		}
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		slog.Warn("assistant provider failed", "provider", p.name, "error", err)
		lastErr = err
	}
	return "", "", fmt.Errorf("%w: all assistant providers failed: %w", ErrUpstream, lastErr)
}

func (s *AssistantService) callProvider(ctx context.Context, p llmProvider, history []llmMessage, temperature float64, maxTokens int) (string, error) {
	reqBody, err := json.Marshal(llmRequest{
		Model:       p.model,
		Messages:    history,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var llmResp llmResponse
	if err := json.Unmarshal(body, &llmResp); err != nil {
		return "", err
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	content := strings.TrimSpace(llmResp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from API")
	}
	return content, nil
}

// pruneLocked drops sessions idle for longer than sessionIdleTTL.
func (s *AssistantService) pruneLocked() {
	cutoff := s.now().Add(-sessionIdleTTL)
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// trimHistory keeps the system instruction and the most recent turns.
func trimHistory(history []llmMessage) []llmMessage {
	if len(history) <= maxHistory {
		return history
	}
	trimmed := make([]llmMessage, 0, maxHistory)
	trimmed = append(trimmed, history[0])
	return append(trimmed, history[len(history)-(maxHistory-1):]...)
}
