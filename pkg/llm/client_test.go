package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

func collect(t *testing.T, ch <-chan Chunk) []Chunk {
	t.Helper()
	var chunks []Chunk
	deadline := time.After(5 * time.Second)
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return chunks
			}
			chunks = append(chunks, chunk)
		case <-deadline:
			t.Fatal("chunk channel not closed")
		}
	}
}

func TestProviderFor(t *testing.T) {
	c := NewClient(nil, "accounts/sentientfoundation/models/dobby")

	assert.Equal(t, models.ProviderFireworks, c.providerFor("accounts/sentientfoundation/models/dobby"))
	assert.Equal(t, models.ProviderAnthropic, c.providerFor("claude-3-5-sonnet-20241022"))
	assert.Equal(t, models.ProviderOpenAI, c.providerFor("gpt-4o-mini"))
	assert.Equal(t, models.ProviderUnknown, c.providerFor("mystery"))
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req["model"])

		fmt.Fprint(w, `{
			"choices": [{"message": {"content": "hello from openai"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7}
		}`)
	}))
	defer srv.Close()

	c := NewClient(map[string]string{models.ProviderOpenAI: "sk-test"}, "",
		WithBaseURL(models.ProviderOpenAI, srv.URL))

	comp, err := c.Complete(context.Background(), "gpt-4o",
		[]Message{{Role: RoleUser, Content: "hi"}}, Options{Temperature: 0.7})

	require.NoError(t, err)
	assert.Equal(t, "hello from openai", comp.Text)
	assert.Equal(t, 12, comp.Usage.PromptTokens)
	assert.Equal(t, 7, comp.Usage.CompletionTokens)
	assert.Equal(t, 19, comp.Usage.Total())
}

func TestOpenAIStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"prompt_tokens\":5,\"completion_tokens\":2}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(map[string]string{models.ProviderOpenAI: "sk-test"}, "",
		WithBaseURL(models.ProviderOpenAI, srv.URL))

	ch, err := c.Stream(context.Background(), "gpt-4o",
		[]Message{{Role: RoleUser, Content: "hi"}}, Options{})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Hello", chunks[0].Text)
	assert.Equal(t, " world", chunks[1].Text)
	assert.True(t, chunks[2].Final)
	require.NotNil(t, chunks[2].Usage)
	assert.Equal(t, 5, chunks[2].Usage.PromptTokens)
	assert.Equal(t, 2, chunks[2].Usage.CompletionTokens)
}

func TestFireworksUsesOpenAICodec(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer fw-test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "dobby says hi"}}]}`)
	}))
	defer srv.Close()

	hint := "accounts/sentientfoundation/models/dobby"
	c := NewClient(map[string]string{models.ProviderFireworks: "fw-test"}, hint,
		WithBaseURL(models.ProviderFireworks, srv.URL))

	comp, err := c.Complete(context.Background(), hint,
		[]Message{{Role: RoleUser, Content: "hi"}}, Options{})

	require.NoError(t, err)
	assert.Equal(t, "dobby says hi", comp.Text)
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be helpful", req["system"], "system messages move to the system field")
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.EqualValues(t, 1024, req["max_tokens"], "max_tokens defaults when unset")

		fmt.Fprint(w, `{
			"content": [{"type": "text", "text": "hello from anthropic"}],
			"usage": {"input_tokens": 20, "output_tokens": 9}
		}`)
	}))
	defer srv.Close()

	c := NewClient(map[string]string{models.ProviderAnthropic: "ant-test"}, "",
		WithBaseURL(models.ProviderAnthropic, srv.URL))

	comp, err := c.Complete(context.Background(), "claude-3-5-sonnet-20241022",
		[]Message{
			{Role: RoleSystem, Content: "be helpful"},
			{Role: RoleUser, Content: "hi"},
		}, Options{})

	require.NoError(t, err)
	assert.Equal(t, "hello from anthropic", comp.Text)
	assert.Equal(t, 20, comp.Usage.PromptTokens)
	assert.Equal(t, 9, comp.Usage.CompletionTokens)
}

func TestAnthropicStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\n")
		fmt.Fprint(w, "data: {\"type\":\"message_start\",\"message\":{\"usage\":{\"input_tokens\":15}}}\n\n")
		fmt.Fprint(w, "event: content_block_delta\n")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"Hi \"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"there\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"message_delta\",\"usage\":{\"output_tokens\":4}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	c := NewClient(map[string]string{models.ProviderAnthropic: "ant-test"}, "",
		WithBaseURL(models.ProviderAnthropic, srv.URL))

	ch, err := c.Stream(context.Background(), "claude-3-5-haiku-20241022",
		[]Message{{Role: RoleUser, Content: "hi"}}, Options{})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Hi ", chunks[0].Text)
	assert.Equal(t, "there", chunks[1].Text)
	assert.True(t, chunks[2].Final)
	require.NotNil(t, chunks[2].Usage)
	assert.Equal(t, 15, chunks[2].Usage.PromptTokens)
	assert.Equal(t, 4, chunks[2].Usage.CompletionTokens)
}

func TestAnthropicStreamErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"error\",\"error\":{\"message\":\"overloaded\"}}\n\n")
	}))
	defer srv.Close()

	c := NewClient(map[string]string{models.ProviderAnthropic: "ant-test"}, "",
		WithBaseURL(models.ProviderAnthropic, srv.URL))

	ch, err := c.Stream(context.Background(), "claude-3-5-haiku-20241022",
		[]Message{{Role: RoleUser, Content: "hi"}}, Options{})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 1)
	require.Error(t, chunks[0].Err)
	assert.Contains(t, chunks[0].Err.Error(), "overloaded")
}

func TestCompleteNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(map[string]string{models.ProviderOpenAI: "bad-key"}, "",
		WithBaseURL(models.ProviderOpenAI, srv.URL))

	_, err := c.Complete(context.Background(), "gpt-4o",
		[]Message{{Role: RoleUser, Content: "hi"}}, Options{})

	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, models.ProviderOpenAI, pErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, pErr.StatusCode)
	assert.Contains(t, pErr.Error(), "invalid api key")
}

func TestCompleteMissingKey(t *testing.T) {
	c := NewClient(map[string]string{}, "")

	_, err := c.Complete(context.Background(), "gpt-4o",
		[]Message{{Role: RoleUser, Content: "hi"}}, Options{})

	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Contains(t, pErr.Error(), "no API key")
}

func TestCompleteUnknownModel(t *testing.T) {
	c := NewClient(map[string]string{models.ProviderOpenAI: "sk"}, "")

	_, err := c.Complete(context.Background(), "mystery-model", nil, Options{})

	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, models.ProviderUnknown, pErr.Provider)
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ProviderError{Provider: models.ProviderOpenAI, StatusCode: 500, Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "openai")
}
