package analyze

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient calls a local Ollama server's /api/generate endpoint.
type OllamaClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewOllamaClient(endpoint, model string, timeout time.Duration) *OllamaClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint(ProviderOllama)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Generate requests a JSON-formatted completion. The body may hold one
// object or newline-delimited chunks; their response fields are joined.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  c.model,
		Prompt: prompt,
		System: systemPrompt,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if err := checkStatus("ollama", resp, respBody); err != nil {
		return "", err
	}

	var sb strings.Builder
	sc := bufio.NewScanner(bytes.NewReader(respBody))
	sc.Buffer(make([]byte, 0, 64*1024), len(respBody)+1)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("decode response line: %w", err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("ollama error: %s", chunk.Error)
		}
		sb.WriteString(chunk.Response)
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scan response: %w", err)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return sb.String(), nil
}

// Close releases idle connections.
func (c *OllamaClient) Close() {
	c.httpClient.CloseIdleConnections()
}
