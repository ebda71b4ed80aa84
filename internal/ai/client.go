package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

const (
	matchTemperature = 0.2
	matchMaxTokens   = 1024

	defaultMaxRetries = 2
	defaultRetryDelay = 500 * time.Millisecond
	maxErrorBody      = 4 << 10
)

// Client ранжирует кандидатов через OpenAI-совместимый chat/completions.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

func NewClient(baseURL, model, apiKey string) *Client {
	endpoint := ""
	if baseURL != "" {
		endpoint = strings.TrimRight(baseURL, "/") + "/chat/completions"
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ProviderError ответ провайдера с кодом 4xx/5xx.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai: провайдер вернул %d: %s", e.StatusCode, e.Body)
}

func (e *ProviderError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// RankFoundItems возвращает идентификаторы кандидатов в порядке, предложенном моделью.
func (c *Client) RankFoundItems(ctx context.Context, query repository.MatchQuery, candidates []*entity.Item) ([]string, error) {
	if len(candidates) == 0 {
		return []string{}, nil
	}
	if c.endpoint == "" {
		return nil, errors.New("ai: base URL не задан")
	}

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: matchSystemPrompt},
			{Role: "user", Content: BuildMatchPrompt(query, candidates)},
		},
		MaxTokens:   matchMaxTokens,
		Temperature: matchTemperature,
	})
	if err != nil {
		return nil, err
	}
	return ParseIDList(content)
}

// complete повторяет запрос при 429 и 5xx с линейной задержкой.
func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}

		content, err := c.do(ctx, body)
		if err == nil {
			return content, nil
		}
		lastErr = err

		var perr *ProviderError
		if !errors.As(err, &perr) || !perr.retryable() {
			return "", err
		}
		logger.Log.WithFields(logrus.Fields{
			"status":  perr.StatusCode,
			"attempt": attempt + 1,
		}).Warn("ai: провайдер недоступен, повторяем")
	}
	return "", lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ai: запрос к провайдеру: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("ai: пустой ответ")
	}
	return out.Choices[0].Message.Content, nil
}
