package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter_CompleteJSON(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "id": "chatcmpl-1",
		  "object": "chat.completion",
		  "model": "llama-3.3-70b-versatile",
		  "choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"clinical_note\":\"S: ...\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	c := NewCompleter("gsk-test", server.URL+"/openai/v1", "llama-3.3-70b-versatile")
	got, err := c.CompleteJSON(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"clinical_note":"S: ..."}`, got)

	assert.Equal(t, "llama-3.3-70b-versatile", payload["model"])
	format, ok := payload["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	messages, ok := payload["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestCompleter_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	c := NewCompleter("k", server.URL, "m")
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "no choices")
}

func TestCompleter_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	c := NewCompleter("k", server.URL, "m")
	_, err := c.CompleteJSON(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "chat completion failed")
}
