package dream

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/onyria-app/core/internal/models"
	"github.com/onyria-app/core/internal/modules/processing/interpret"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// frenchDate formats a date as "2 janvier 2026".
func frenchDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

func exportTitle(d *models.DreamModel) string {
	return dreamTypeLabel(d.DreamType) + " du " + frenchDate(d.CreatedAt)
}

// buildExportMeta builds the YAML front-matter fields of a markdown export.
func buildExportMeta(d *models.DreamModel) map[string]any {
	meta := map[string]any{
		"date":       d.CreatedAt.Format(time.RFC3339),
		"dream_type": d.DreamType,
	}
	if d.DominantEmotion != "" {
		meta["dominant_emotion"] = d.DominantEmotion
		meta["confidence"] = d.EmotionConfidence
	}
	if d.ImagePath != "" {
		meta["image"] = d.ImagePath
	}
	return meta
}

// buildExportBody assembles the markdown body: the narrative, one section
// per interpretation lens in canonical order, then the illustration.
func buildExportBody(d *models.DreamModel) string {
	var sb strings.Builder

	sb.WriteString("## Récit\n\n")
	sb.WriteString(strings.TrimSpace(d.Transcription))
	sb.WriteString("\n")

	if record := parseInterpretation(d.InterpretationJSON); record != nil {
		raw, err := json.Marshal(record)
		if err == nil {
			var lenses map[string]string
			if err := json.Unmarshal(raw, &lenses); err == nil {
				for _, lens := range interpret.Lenses {
					text := strings.TrimSpace(lenses[lens])
					if text == "" {
						continue
					}
					sb.WriteString("\n## ")
					sb.WriteString(lens)
					sb.WriteString("\n\n")
					sb.WriteString(text)
					sb.WriteString("\n")
				}
			}
		}
	}

	if d.ImagePath != "" {
		sb.WriteString("\n## Illustration\n\n")
		sb.WriteString("![Illustration du rêve](")
		sb.WriteString(d.ImagePath)
		sb.WriteString(")\n")
	}

	return sb.String()
}
