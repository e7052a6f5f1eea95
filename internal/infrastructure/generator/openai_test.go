package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Generate(t *testing.T) {
	var got openAIChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"## Overall Mindset\nCalm."}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAI("sk-test", "gpt-test", srv.URL+"/")
	out, err := g.Generate(context.Background(), "summarize")
	require.NoError(t, err)

	assert.Equal(t, "## Overall Mindset\nCalm.", out)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "summarize", got.Messages[0].Content)
}

func TestOpenAI_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota"}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("k", "m", srv.URL).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("k", "m", srv.URL).Generate(context.Background(), "p")
	assert.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrUnavailable)
}
