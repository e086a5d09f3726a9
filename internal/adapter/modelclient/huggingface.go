package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

const maxUpstreamBody = 2048

var _ port.TextGenerator = (*HuggingFaceClient)(nil)

// HuggingFaceClient calls a text-generation inference endpoint such as
// api-inference.huggingface.co/models/<model>. One request per Generate
// call, no retries.
type HuggingFaceClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewHuggingFaceClient(endpoint, apiKey string) (*HuggingFaceClient, error) {
	const op = "NewHuggingFaceClient"

	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op,
			&domain.ModelError{Kind: domain.ModelAuth, Msg: "missing API key"})
	}
	if endpoint == "" {
		return nil, fmt.Errorf("%s: endpoint is required", op)
	}

	return &HuggingFaceClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}, nil
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	Temperature    float32 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (c *HuggingFaceClient) Generate(
	ctx context.Context, prompt string, temperature float32,
) (string, error) {
	const op = "HuggingFaceClient.Generate"

	payload, err := json.Marshal(hfRequest{
		Inputs:     prompt,
		Parameters: hfParameters{Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, transportError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, transportError(err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%s: %w", op, &domain.ModelError{
			Kind: domain.ModelAuth, Msg: "provider rejected the credential",
		})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("%s: %w", op, &domain.ModelError{
			Kind:       domain.ModelUpstream,
			StatusCode: resp.StatusCode,
			Msg:        string(body),
		})
	}

	var generations []hfGeneration
	if err := json.Unmarshal(body, &generations); err != nil {
		return "", fmt.Errorf("%s: %w", op, &domain.ModelError{
			Kind: domain.ModelMalformed, Msg: "response is not a generation list", Err: err,
		})
	}
	if len(generations) == 0 || strings.TrimSpace(generations[0].GeneratedText) == "" {
		return "", fmt.Errorf("%s: %w", op, &domain.ModelError{
			Kind: domain.ModelMalformed, Msg: "response contains no generated text",
		})
	}
	return generations[0].GeneratedText, nil
}
