package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// Default provider endpoints. Fireworks exposes an OpenAI-compatible API, so
// it shares the openai wire codec and differs only in base URL and key.
const (
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultFireworksBaseURL = "https://api.fireworks.ai/inference/v1"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"

	anthropicVersion = "2023-06-01"

	// Anthropic requires max_tokens on every request.
	defaultMaxTokens = 1024
)

// Client is an HTTP completion provider. Keys are request-scoped: a Client
// is constructed per session from the job's credential bundle and discarded
// with it, so secrets never live longer than the connection they serve.
type Client struct {
	httpClient *http.Client
	keys       map[string]string
	modelHint  string
	baseURLs   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides a provider's base URL. Used by tests to point the
// client at a local server.
func WithBaseURL(provider, url string) Option {
	return func(c *Client) { c.baseURLs[provider] = strings.TrimSuffix(url, "/") }
}

// NewClient creates a provider client holding the given per-provider keys.
// modelHint is the caller-selected Fireworks model, used to route that model
// name to the Fireworks key and endpoint.
func NewClient(keys map[string]string, modelHint string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		keys:       keys,
		modelHint:  modelHint,
		baseURLs: map[string]string{
			models.ProviderOpenAI:    defaultOpenAIBaseURL,
			models.ProviderFireworks: defaultFireworksBaseURL,
			models.ProviderAnthropic: defaultAnthropicBaseURL,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// providerFor maps a model name to the provider that serves it.
// The model hint takes precedence so custom Fireworks model paths
// (which may contain arbitrary substrings) resolve correctly.
func (c *Client) providerFor(model string) string {
	switch {
	case c.modelHint != "" && strings.Contains(model, c.modelHint):
		return models.ProviderFireworks
	case strings.Contains(model, "claude"):
		return models.ProviderAnthropic
	case strings.Contains(model, "gpt"):
		return models.ProviderOpenAI
	default:
		return models.ProviderUnknown
	}
}

// Complete performs a single non-streaming completion call.
func (c *Client) Complete(ctx context.Context, model string, messages []Message, opts Options) (*Completion, error) {
	provider := c.providerFor(model)
	switch provider {
	case models.ProviderAnthropic:
		return c.anthropicComplete(ctx, model, messages, opts)
	case models.ProviderOpenAI, models.ProviderFireworks:
		return c.openaiComplete(ctx, provider, model, messages, opts)
	default:
		return nil, &ProviderError{Provider: provider, Err: fmt.Errorf("no provider for model %q", model)}
	}
}

// Stream performs a streaming completion call. The returned channel is
// closed after the terminal chunk (or an in-band error chunk).
func (c *Client) Stream(ctx context.Context, model string, messages []Message, opts Options) (<-chan Chunk, error) {
	provider := c.providerFor(model)
	switch provider {
	case models.ProviderAnthropic:
		return c.anthropicStream(ctx, model, messages, opts)
	case models.ProviderOpenAI, models.ProviderFireworks:
		return c.openaiStream(ctx, provider, model, messages, opts)
	default:
		return nil, &ProviderError{Provider: provider, Err: fmt.Errorf("no provider for model %q", model)}
	}
}

// --- OpenAI-compatible codec (openai, fireworks) ---

type openaiRequest struct {
	Model         string          `json:"model"`
	Messages      []Message       `json:"messages"`
	Temperature   float64         `json:"temperature"`
	MaxTokens     int             `json:"max_tokens,omitempty"`
	Stream        bool            `json:"stream,omitempty"`
	StreamOptions *oaStreamOption `json:"stream_options,omitempty"`
}

type oaStreamOption struct {
	IncludeUsage bool `json:"include_usage"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *Client) openaiComplete(ctx context.Context, provider, model string, messages []Message, opts Options) (*Completion, error) {
	body := openaiRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.post(ctx, provider, "/chat/completions", body, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ProviderError{Provider: provider, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &ProviderError{Provider: provider, Err: errors.New("response contained no choices")}
	}

	out := &Completion{Text: parsed.Choices[0].Message.Content}
	if parsed.Usage != nil {
		out.Usage = Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
		}
	}
	return out, nil
}

func (c *Client) openaiStream(ctx context.Context, provider, model string, messages []Message, opts Options) (<-chan Chunk, error) {
	body := openaiRequest{
		Model:         model,
		Messages:      messages,
		Temperature:   opts.Temperature,
		MaxTokens:     opts.MaxTokens,
		Stream:        true,
		StreamOptions: &oaStreamOption{IncludeUsage: true},
	}

	resp, err := c.post(ctx, provider, "/chat/completions", body, true)
	if err != nil {
		return nil, err
	}

	chunks := make(chan Chunk, 16)
	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		var usage *Usage
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			data, ok := sseData(scanner.Text())
			if !ok {
				continue
			}
			if data == "[DONE]" {
				break
			}

			var parsed openaiResponse
			if err := json.Unmarshal([]byte(data), &parsed); err != nil {
				continue
			}
			if parsed.Usage != nil {
				usage = &Usage{
					PromptTokens:     parsed.Usage.PromptTokens,
					CompletionTokens: parsed.Usage.CompletionTokens,
				}
			}
			if len(parsed.Choices) == 0 || parsed.Choices[0].Delta.Content == "" {
				continue
			}
			if !send(ctx, chunks, Chunk{Text: parsed.Choices[0].Delta.Content}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(ctx, chunks, Chunk{Err: &ProviderError{Provider: provider, Err: err}})
			return
		}
		send(ctx, chunks, Chunk{Final: true, Usage: usage})
	}()

	return chunks, nil
}

// --- Anthropic codec ---

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// anthropicStreamEvent is the union of the SSE event payloads we consume.
type anthropicStreamEvent struct {
	Type    string `json:"type"`
	Message struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// splitSystem separates system messages (Anthropic carries them in a
// dedicated request field) from the conversation turns.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}

func (c *Client) anthropicComplete(ctx context.Context, model string, messages []Message, opts Options) (*Completion, error) {
	system, turns := splitSystem(messages)
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	body := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  turns,
	}

	resp, err := c.post(ctx, models.ProviderAnthropic, "/messages", body, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ProviderError{Provider: models.ProviderAnthropic, Err: fmt.Errorf("decode response: %w", err)}
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &Completion{
		Text: text.String(),
		Usage: Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
		},
	}, nil
}

func (c *Client) anthropicStream(ctx context.Context, model string, messages []Message, opts Options) (<-chan Chunk, error) {
	system, turns := splitSystem(messages)
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	body := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  turns,
		Stream:    true,
	}

	resp, err := c.post(ctx, models.ProviderAnthropic, "/messages", body, true)
	if err != nil {
		return nil, err
	}

	chunks := make(chan Chunk, 16)
	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		usage := Usage{}
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			data, ok := sseData(scanner.Text())
			if !ok {
				continue
			}

			var evt anthropicStreamEvent
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				continue
			}
			switch evt.Type {
			case "message_start":
				usage.PromptTokens = evt.Message.Usage.InputTokens
			case "content_block_delta":
				if evt.Delta.Text != "" {
					if !send(ctx, chunks, Chunk{Text: evt.Delta.Text}) {
						return
					}
				}
			case "message_delta":
				usage.CompletionTokens = evt.Usage.OutputTokens
			case "error":
				send(ctx, chunks, Chunk{Err: &ProviderError{
					Provider: models.ProviderAnthropic,
					Err:      errors.New(evt.Error.Message),
				}})
				return
			case "message_stop":
				u := usage
				send(ctx, chunks, Chunk{Final: true, Usage: &u})
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(ctx, chunks, Chunk{Err: &ProviderError{Provider: models.ProviderAnthropic, Err: err}})
			return
		}
		u := usage
		send(ctx, chunks, Chunk{Final: true, Usage: &u})
	}()

	return chunks, nil
}

// --- shared transport ---

// post issues a JSON POST to the provider and validates the HTTP status.
// On non-2xx the body is drained into the returned ProviderError.
func (c *Client) post(ctx context.Context, provider, path string, body any, stream bool) (*http.Response, error) {
	key := c.keys[provider]
	if key == "" {
		return nil, &ProviderError{Provider: provider, Err: errors.New("no API key configured")}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURLs[provider]+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Provider: provider, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if provider == models.ProviderAnthropic {
		req.Header.Set("x-api-key", key)
		req.Header.Set("anthropic-version", anthropicVersion)
	} else {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(detail))),
		}
	}
	return resp, nil
}

// sseData extracts the payload of an SSE "data:" line.
func sseData(line string) (string, bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
}

// send delivers a chunk unless the consumer is gone.
func send(ctx context.Context, ch chan<- Chunk, chunk Chunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
