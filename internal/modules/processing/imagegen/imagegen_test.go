package imagegen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	appcfg "github.com/onyria-app/core/internal/config"
)

func TestBuildImagePath(t *testing.T) {
	now := time.Date(2026, 8, 26, 3, 14, 0, 0, time.UTC)
	path := buildImagePath("dreams/{Y}/{m}/{uuid}.{ext}", now, "png")

	if !strings.HasPrefix(path, "dreams/2026/08/") {
		t.Fatalf("unexpected prefix: %q", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("unexpected extension: %q", path)
	}

	uuidPart := strings.TrimSuffix(strings.TrimPrefix(path, "dreams/2026/08/"), ".png")
	if ok, _ := regexp.MatchString(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, uuidPart); !ok {
		t.Fatalf("expected a uuid segment, got %q", uuidPart)
	}
}

func TestBuildImagePathDefaultsAndTrims(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	path := buildImagePath("", now, "png")
	if !strings.HasPrefix(path, "dreams/2026/01/") {
		t.Fatalf("default pattern not applied: %q", path)
	}

	path = buildImagePath("/archive/{Y}/{d}/{uuid}.{ext}/", now, "webp")
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		t.Fatalf("path not trimmed: %q", path)
	}
	if !strings.HasPrefix(path, "archive/2026/02/") {
		t.Fatalf("day placeholder not expanded: %q", path)
	}
}

func TestRenderImageTimesOutOnHungBackend(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	saved := requestTimeout
	requestTimeout = 50 * time.Millisecond
	defer func() { requestTimeout = saved }()

	cfg := appcfg.DefaultFullConfig()
	cfg.AI.Providers = []appcfg.AIProvider{{
		ID:       "p1",
		Type:     "OpenAI",
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Enabled:  true,
	}}
	cfg.ImageGeneration = appcfg.ImageGenOptions{Enable: true, ProviderID: "p1"}

	s := NewService(nil, t.TempDir())
	start := time.Now()
	if _, err := s.renderImage(context.Background(), &cfg, "une plage onirique"); err == nil {
		t.Fatal("expected an error from a hung backend")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("call was not bounded, took %s", elapsed)
	}
}
