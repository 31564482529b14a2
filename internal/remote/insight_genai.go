package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"nestegg-client/internal/domain"
	apperrors "nestegg-client/internal/errors"
)

const genaiModel = "gemini-2.5-flash"

// GenAIInsightSource generates stock explanations and investing tips with
// Gemini instead of the Nestegg insight endpoints. It is a construction-time
// alternative used when the backend's insight service is unavailable.
// Account-level insights need server-held data, so ListInsights returns an
// empty list here.
type GenAIInsightSource struct {
	client *genai.Client
	config *genai.GenerateContentConfig
}

// NewGenAIInsightSource wraps an initialized Gemini client.
func NewGenAIInsightSource(client *genai.Client) *GenAIInsightSource {
	return &GenAIInsightSource{
		client: client,
		config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
You explain financial concepts to beginner retail investors.
Be factual and plain-spoken. Never give personalized financial advice,
never predict prices, and keep each answer under 120 words.`}}},
		},
	}
}

func (s *GenAIInsightSource) ListInsights(ctx context.Context) ([]domain.Insight, error) {
	return []domain.Insight{}, nil
}

func (s *GenAIInsightSource) GetStockExplanation(ctx context.Context, symbol string) (domain.StockExplanation, error) {
	symbol = domain.NormalizeSymbol(symbol)
	prompt := fmt.Sprintf("Explain in plain language what the company behind the ticker %s does and what kind of investment it is generally considered to be.", symbol)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return domain.StockExplanation{}, err
	}
	return domain.StockExplanation{
		Symbol:      symbol,
		Explanation: text,
		GeneratedAt: time.Now(),
	}, nil
}

func (s *GenAIInsightSource) ListInvestingTips(ctx context.Context) ([]domain.InvestingTip, error) {
	prompt := `Give five short, general investing tips for beginners as a JSON array of objects with "id", "title" and "body" fields. Respond with JSON only.`

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var tips []domain.InvestingTip
	if err := json.Unmarshal([]byte(text), &tips); err != nil {
		return nil, apperrors.Decode("DECODE_TIPS", "model returned malformed tips").
			WithCause(err).
			Build()
	}
	return tips, nil
}

func (s *GenAIInsightSource) generate(ctx context.Context, prompt string) (string, error) {
	chat, err := s.client.Chats.Create(ctx, genaiModel, s.config, nil)
	if err != nil {
		return "", apperrors.Connectivity("GENAI_SESSION", "failed to start generation session").
			WithCause(err).
			Build()
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		return "", apperrors.Connectivity("GENAI_GENERATE", "generation request failed").
			WithCause(err).
			Build()
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.Decode("GENAI_EMPTY", "model returned no content").Build()
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
