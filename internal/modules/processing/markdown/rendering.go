// Package markdown renders diary exports as markdown documents or as
// standalone styled HTML pages.
package markdown

import (
	"bytes"
	_ "embed"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

//go:embed assets/markdown.css
var baseStyle string

var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// DocumentOptions controls the chrome around an exported HTML page.
type DocumentOptions struct {
	Title  string
	Info   string
	Footer string
}

// RenderContent converts markdown text to an HTML fragment. Input that the
// parser rejects is returned escaped rather than dropped.
func RenderContent(markdownText string) string {
	text := strings.TrimSpace(markdownText)
	if text == "" {
		return ""
	}

	var out bytes.Buffer
	if err := engine.Convert([]byte(text), &out); err != nil {
		return template.HTMLEscapeString(text)
	}
	return out.String()
}

// RenderHTMLDocument wraps an HTML fragment into a full self-contained page.
func RenderHTMLDocument(fragment string, options DocumentOptions) string {
	var b strings.Builder
	b.Grow(4096)

	title := template.HTMLEscapeString(strings.TrimSpace(options.Title))
	if title == "" {
		title = "Onyria"
	}

	b.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n")
	b.WriteString("  <head>\n")
	b.WriteString("    <meta charset=\"UTF-8\" />\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n")
	b.WriteString("    <meta name=\"referrer\" content=\"no-referrer\" />\n")
	b.WriteString("    <style>\n")
	b.WriteString(baseStyle)
	b.WriteString("\n    </style>\n")
	b.WriteString("    <title>")
	b.WriteString(title)
	b.WriteString("</title>\n")
	b.WriteString("  </head>\n\n")
	b.WriteString("  <body>\n")
	if info := strings.TrimSpace(options.Info); info != "" {
		b.WriteString("    <p class=\"export-info\">")
		b.WriteString(template.HTMLEscapeString(info))
		b.WriteString("</p>\n")
	}
	b.WriteString("    <article><h1>")
	b.WriteString(title)
	b.WriteString("</h1>")
	b.WriteString(fragment)
	b.WriteString("</article>\n")
	if footer := strings.TrimSpace(options.Footer); footer != "" {
		b.WriteString("    <footer>")
		b.WriteString(template.HTMLEscapeString(footer))
		b.WriteString("</footer>\n")
	}
	b.WriteString("  </body>\n")
	b.WriteString("</html>")

	return b.String()
}
