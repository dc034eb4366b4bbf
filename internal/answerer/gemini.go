package answerer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiAnswerer generates grounded replies with the Gemini API.
type GeminiAnswerer struct {
	client       *genai.Client
	model        string
	temperature  float32
	contactEmail string
	logger       *zap.Logger
}

// GeminiConfig configures a GeminiAnswerer. The API key is read from the
// environment variable named in APIKeyEnv.
type GeminiConfig struct {
	Model        string
	APIKeyEnv    string
	Temperature  float32
	ContactEmail string
}

func NewGeminiAnswerer(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiAnswerer, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiAnswerer{
		client:       client,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		contactEmail: cfg.ContactEmail,
		logger:       logger,
	}, nil
}

// Answer sends the conversation history plus the context-grounded query to
// the model and returns the reply text.
func (a *GeminiAnswerer) Answer(ctx context.Context, query string, contextBlocks []string, history []models.Message) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}
	contents = append(contents, genai.NewContentFromText(buildPrompt(query, contextBlocks), genai.RoleUser))

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(a.temperature),
		SystemInstruction: genai.NewContentFromText(a.systemInstruction(), genai.RoleUser),
	}
	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var b strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				b.WriteString(part.Text)
			}
			if b.Len() > 0 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("model returned no text")
	}
	a.logger.Debug("generated answer", zap.String("model", a.model), zap.Int("history_turns", len(history)))
	return b.String(), nil
}

func (a *GeminiAnswerer) systemInstruction() string {
	return "You are a helpful and professional assistant for IDC Technologies. " +
		"Answer questions based ONLY on the provided context. " +
		"Provide comprehensive answers (aim for 75+ words when context allows). " +
		"Always mention the sources of your information. " +
		"If the answer is not in the context, politely state you don't have that information " +
		"and suggest contacting us directly at " + a.contactEmail + " for more detailed assistance. " +
		"Be friendly, polite, and professional in your responses."
}

func buildPrompt(query string, contextBlocks []string) string {
	return "Context Information:\n" +
		strings.Join(contextBlocks, "\n---\n") +
		"\n\nUser Question: " + query +
		"\n\nPlease provide a helpful, comprehensive answer based on the context above:"
}
