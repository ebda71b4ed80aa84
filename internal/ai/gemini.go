package ai

import (
	"context"
	"fmt"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"google.golang.org/genai"
)

// GeminiClient ранжирует кандидатов через Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: GEMINI_API_KEY не задан")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: не удалось создать клиент gemini: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) RankFoundItems(ctx context.Context, query repository.MatchQuery, candidates []*entity.Item) ([]string, error) {
	if len(candidates) == 0 {
		return []string{}, nil
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(matchSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](matchTemperature),
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildMatchPrompt(query, candidates)), config)
	if err != nil {
		return nil, fmt.Errorf("ai: gemini: %w", err)
	}
	return ParseIDList(resp.Text())
}
