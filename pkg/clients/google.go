package clients

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// DefaultModel is the default model to use if none is specified
const DefaultModel = "gemini-2.5-flash"

var ErrMissingAPIKey = errors.New("no Gemini API key set (GEMINI_API_KEY or GOOGLE_API_KEY)")

// Gemini creates an ADK model backed by the Gemini API.
func Gemini(ctx context.Context, apiKey, modelName string) (model.LLM, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model %s: %w", modelName, err)
	}
	return llm, nil
}
