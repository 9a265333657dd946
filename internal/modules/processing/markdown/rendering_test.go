package markdown

import (
	"strings"
	"testing"
)

func TestRenderContent(t *testing.T) {
	html := RenderContent("## Symbolique\n\nLe vol exprime un **désir** de liberté.")
	if !strings.Contains(html, "<h2") {
		t.Errorf("expected a heading in output, got %q", html)
	}
	if !strings.Contains(html, "<strong>désir</strong>") {
		t.Errorf("expected bold rendering, got %q", html)
	}
}

func TestRenderContentEmpty(t *testing.T) {
	if got := RenderContent("   \n  "); got != "" {
		t.Errorf("expected empty output for blank input, got %q", got)
	}
}

func TestRenderHTMLDocument(t *testing.T) {
	doc := RenderHTMLDocument("<p>corps</p>", DocumentOptions{
		Title: "Rêve du 12 mars 2026",
		Info:  "Exporté depuis Onyria",
	})

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Rêve du 12 mars 2026</title>",
		"<p>corps</p>",
		"Exporté depuis Onyria",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document is missing %q", want)
		}
	}
}

func TestBuildDocument(t *testing.T) {
	meta := map[string]any{
		"date":       "2026-03-12",
		"dream_type": "rêve",
	}
	doc := BuildDocument(meta, "Rêve du 12 mars 2026", "Je volais.", true)

	if !strings.HasPrefix(doc, "---\n") {
		t.Fatalf("expected YAML front matter, got %q", doc)
	}
	if !strings.Contains(doc, "dream_type: rêve") {
		t.Errorf("front matter is missing dream_type: %q", doc)
	}
	if !strings.Contains(doc, "# Rêve du 12 mars 2026") {
		t.Errorf("missing title heading: %q", doc)
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Rêve du 12 mars": "Rêve-du-12-mars.md",
		"a/b\\c":          "a-b-c.md",
		"":                "reve.md",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}
