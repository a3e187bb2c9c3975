package analyst

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// ErrNoAPIKey is returned when the reasoning service has no credentials.
var ErrNoAPIKey = errors.New("gemini api key not set")

// generator is the subset of the genai models service used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini scores disclosures with a Gemini model
type Gemini struct {
	models generator
	model  string
}

// NewGemini creates a Gemini client for the given API key and model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Model returns the model name
func (g *Gemini) Model() string {
	return g.model
}

// Assess sends the request and parses the answer into a verdict.
func (g *Gemini) Assess(ctx context.Context, req Request) (Verdict, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      req.Temperature,
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = req.MaxTokens
	}

	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.User), config)
	if err != nil {
		return Verdict{}, fmt.Errorf("gemini generation failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return Verdict{}, errors.New("gemini returned an empty answer")
	}
	return ParseVerdict(text), nil
}
