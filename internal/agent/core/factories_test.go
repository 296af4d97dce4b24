package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Nithin218/MindMate-AI/config"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Here is the result: {\"a\": 1} hope it helps", `{"a": 1}`},
		{"no json here", "no json here"},
	}
	for _, c := range cases {
		if got := extractJSON(c.in); got != c.want {
			t.Fatalf("extractJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDefaultBaseURL(t *testing.T) {
	if got := defaultBaseURL("groq"); got != "https://api.groq.com/openai/v1" {
		t.Fatalf("groq base url: %q", got)
	}
	if got := defaultBaseURL("openai"); got != "https://api.openai.com/v1" {
		t.Fatalf("openai base url: %q", got)
	}
}

func TestChatProviderGenerateWithTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "llama-3.1-8b-instant" {
			t.Errorf("expected api model name, got %v", req["model"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello there"}},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 5},
		})
	}))
	defer srv.Close()

	p := NewChatProvider(config.LLMProvider{
		Type:    "groq",
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Models: map[string]config.LLMModel{
			"llama-3.1-8b": {
				Name:            "llama-3.1-8b",
				APIName:         "llama-3.1-8b-instant",
				CostPer1K:       0.001,
				CostPer1KOutput: 0.002,
			},
		},
	})

	resp, in, out, err := p.GenerateWithTokens(context.Background(), "say hello", "llama-3.1-8b", nil)
	if err != nil {
		t.Fatalf("GenerateWithTokens: %v", err)
	}
	if resp != "hello there" {
		t.Fatalf("unexpected response %q", resp)
	}
	if in != 12 || out != 5 {
		t.Fatalf("unexpected token counts: %d/%d", in, out)
	}

	cost := p.CalculateCost(1000, 1000, "llama-3.1-8b")
	if cost < 0.0029 || cost > 0.0031 {
		t.Fatalf("unexpected cost %f", cost)
	}
}
