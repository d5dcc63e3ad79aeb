package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pkt.systems/pslog"
)

const (
	// DefaultBaseURL matches a locally running Ollama service.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama3"

	defaultTimeout = 120 * time.Second
)

// Ollama calls an Ollama-compatible /api/generate endpoint. One client is
// safe for concurrent use.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     pslog.Base
}

// NewOllama builds a client. Zero values fall back to defaults.
func NewOllama(baseURL, model string, timeout time.Duration, logger pslog.Base) *Ollama {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Ollama{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate performs one non-streaming completion call.
func (o *Ollama) Generate(ctx context.Context, prompt string, structured bool) (string, error) {
	reqBody := generateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": 0.1},
	}
	if structured {
		reqBody.Format = "json"
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	if o.logger != nil {
		o.logger.Debug("generate", "model", o.model, "structured", structured, "prompt_bytes", len(prompt))
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generator: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generator response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("generator http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode generator response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("generator error: %s", out.Error)
	}
	return out.Response, nil
}
