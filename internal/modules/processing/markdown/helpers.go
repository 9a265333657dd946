package markdown

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Filename builds a safe .md filename for an exported entry.
func Filename(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "reve"
	}
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, " ", "-")
	return name + ".md"
}

// BuildDocument assembles a markdown document, optionally with a YAML
// front-matter header built from meta.
func BuildDocument(meta map[string]any, title, text string, includeYAMLHeader bool) string {
	var sb strings.Builder
	if includeYAMLHeader && len(meta) > 0 {
		yamlText, err := yaml.Marshal(meta)
		if err == nil {
			sb.WriteString("---\n")
			sb.WriteString(strings.TrimSpace(string(yamlText)))
			sb.WriteString("\n---\n\n")
		}
	}
	if title = strings.TrimSpace(title); title != "" {
		sb.WriteString("# ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.TrimSpace(text))
	sb.WriteString("\n")
	return sb.String()
}

// ParseBool converts common truthy query-string values to bool.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
