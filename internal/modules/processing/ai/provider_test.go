package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appcfg "github.com/onyria-app/core/internal/config"
)

func TestDecodeJSON(t *testing.T) {
	type out struct {
		Summary string `json:"summary"`
	}

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"summary":"ok"}`, "ok"},
		{"fenced", "```json\n{\"summary\":\"ok\"}\n```", "ok"},
		{"prose", "Here is the result: {\"summary\":\"ok\"} hope it helps", "ok"},
	}
	for _, tc := range cases {
		var o out
		if err := DecodeJSON(tc.raw, &o); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if o.Summary != tc.want {
			t.Fatalf("%s: got %q", tc.name, o.Summary)
		}
	}

	var o out
	if err := DecodeJSON("not json at all", &o); err == nil {
		t.Fatal("expected error for non-JSON input")
	}
}

func TestSelectProvider(t *testing.T) {
	cfg := appcfg.AIConfig{
		Providers: []appcfg.AIProvider{
			{ID: "disabled", Type: "openai", Enabled: false},
			{ID: "first", Type: "openai", DefaultModel: "gpt-4o-mini", Enabled: true},
			{ID: "mistral", Type: "openai-compatible", DefaultModel: "mistral-small-latest", Enabled: true},
		},
	}

	// Assignment targets a specific provider with a model override.
	p := SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "mistral", Model: "mistral-large-latest"})
	if p == nil || p.ID != "mistral" || p.DefaultModel != "mistral-large-latest" {
		t.Fatalf("unexpected provider: %+v", p)
	}

	// Unknown assignment falls back to the first enabled provider.
	p = SelectProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "nope"})
	if p == nil || p.ID != "first" {
		t.Fatalf("fallback failed: %+v", p)
	}

	// Nil assignment picks the first enabled provider.
	p = SelectProvider(cfg, nil)
	if p == nil || p.ID != "first" {
		t.Fatalf("nil assignment: %+v", p)
	}

	if SelectProvider(appcfg.AIConfig{}, nil) != nil {
		t.Fatal("expected nil when no provider is enabled")
	}
}

func TestGenerateOpenAICompatible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"summary\":\"bonjour\"}"}}]}`))
	}))
	defer srv.Close()

	provider := &appcfg.AIProvider{
		Type:         "openai-compatible",
		APIKey:       "test-key",
		Endpoint:     srv.URL,
		DefaultModel: "mistral-small-latest",
		Enabled:      true,
	}

	got, err := Generate(context.Background(), provider, "system", "user prompt", 256)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"summary":"bonjour"}` {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestGenerateOpenAICompatibleError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	provider := &appcfg.AIProvider{
		Type:     "openai-compatible",
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Enabled:  true,
	}

	if _, err := Generate(context.Background(), provider, "", "prompt", 0); err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestGenerateTimesOutOnHungBackend(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	saved := requestTimeout
	requestTimeout = 50 * time.Millisecond
	defer func() { requestTimeout = saved }()

	provider := &appcfg.AIProvider{
		Type:         "OpenAI",
		APIKey:       "test-key",
		Endpoint:     srv.URL,
		DefaultModel: "gpt-4o-mini",
		Enabled:      true,
	}

	start := time.Now()
	if _, err := Generate(context.Background(), provider, "system", "prompt", 64); err == nil {
		t.Fatal("expected an error from a hung backend")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("call was not bounded, took %s", elapsed)
	}
}

func TestNormalizeOpenAICompatibleEndpoint(t *testing.T) {
	cases := map[string]string{
		"":                               "https://api.openai.com",
		"https://api.groq.com/openai/v1": "https://api.groq.com/openai",
		"https://api.mistral.ai/v1/":     "https://api.mistral.ai",
		"https://example.com":            "https://example.com",
	}
	for in, want := range cases {
		if got := normalizeOpenAICompatibleEndpoint(in); got != want {
			t.Errorf("normalizeOpenAICompatibleEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeModelsEndpoints(t *testing.T) {
	if got := normalizeOpenAIModelsEndpoint("https://api.groq.com/openai/v1"); got != "https://api.groq.com/openai/v1/models" {
		t.Errorf("openai models endpoint: %q", got)
	}
	if got := normalizeAnthropicModelsEndpoint(""); got != "https://api.anthropic.com/v1/models" {
		t.Errorf("anthropic default endpoint: %q", got)
	}
	if got := normalizeOpenRouterModelsEndpoint("https://openrouter.ai/api/v1"); got != "https://openrouter.ai/api/v1/models" {
		t.Errorf("openrouter endpoint: %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("court", 10); got != "court" {
		t.Fatalf("short text modified: %q", got)
	}
	if got := TruncateText("éléphantesque", 8); got != "éléphant..." {
		t.Fatalf("rune-aware truncation failed: %q", got)
	}
}
