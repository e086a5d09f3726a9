package modelclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-pro"

var _ port.TextGenerator = (*GeminiClient)(nil)

type GeminiClient struct {
	cl    *genai.Client
	model string
}

func NewGeminiClient(
	ctx context.Context, apiKey, model string,
) (*GeminiClient, error) {
	const op = "NewGeminiClient"

	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op,
			&domain.ModelError{Kind: domain.ModelAuth, Msg: "missing API key"})
	}
	if model == "" {
		model = defaultGeminiModel
	}

	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &GeminiClient{cl: cl, model: model}, nil
}

// Generate performs a single generateContent call. The caller's context
// deadline is the only timeout in play.
func (c *GeminiClient) Generate(
	ctx context.Context, prompt string, temperature float32,
) (string, error) {
	const op = "GeminiClient.Generate"

	resp, err := c.cl.Models.GenerateContent(
		ctx, c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)},
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, geminiError(err))
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, &domain.ModelError{
			Kind: domain.ModelMalformed, Msg: "response contains no text",
		})
	}
	return text, nil
}

func geminiError(err error) *domain.ModelError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &domain.ModelError{
				Kind: domain.ModelAuth, Msg: "provider rejected the credential",
			}
		default:
			return &domain.ModelError{
				Kind:       domain.ModelUpstream,
				StatusCode: apiErr.Code,
				Msg:        apiErr.Message,
			}
		}
	}
	return transportError(err)
}
