package dream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/onyria-app/core/internal/modules/processing/interpret"
)

// Dream type display labels, keyed by the raw value stored in the database.
var dreamTypeLabels = map[string]string{
	"rêve":      "Rêve",
	"cauchemar": "Cauchemar",
}

// EmotionTuple is the [label, confidence] pair of the response envelope. It
// marshals as a two-element JSON array.
type EmotionTuple struct {
	Label      string
	Confidence float64
}

func (t EmotionTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.Label, t.Confidence})
}

func (t *EmotionTuple) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("dominant_emotion needs [label, confidence], got %d element(s)", len(raw))
	}
	if err := json.Unmarshal(raw[0], &t.Label); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &t.Confidence)
}

// analyzeResponse is the envelope returned by POST /dreams/analyze.
type analyzeResponse struct {
	Success         bool              `json:"success"`
	ID              string            `json:"id"`
	Transcription   string            `json:"transcription"`
	DominantEmotion EmotionTuple      `json:"dominant_emotion"`
	DreamType       string            `json:"dream_type"`
	Interpretation  *interpret.Record `json:"interpretation"`
	ImagePath       *string           `json:"image_path"`
}

// dreamItem is one row of the paginated diary listing.
type dreamItem struct {
	ID              string    `json:"id"`
	Created         time.Time `json:"created"`
	Transcription   string    `json:"transcription"`
	DominantEmotion string    `json:"dominant_emotion"`
	EmotionLabel    string    `json:"emotion_label"`
	DreamType       string    `json:"dream_type"`
	ImagePath       *string   `json:"image_path"`
	IsAnalyzed      bool      `json:"is_analyzed"`
}

// dreamDetail is the full view of a single diary entry.
type dreamDetail struct {
	ID              string             `json:"id"`
	Created         time.Time          `json:"created"`
	Modified        time.Time          `json:"modified"`
	Transcription   string             `json:"transcription"`
	EmotionScores   map[string]float64 `json:"emotions"`
	DominantEmotion EmotionTuple       `json:"dominant_emotion"`
	DreamType       string             `json:"dream_type"`
	Interpretation  *interpret.Record  `json:"interpretation"`
	ImagePath       *string            `json:"image_path"`
	IsAnalyzed      bool               `json:"is_analyzed"`
}

// statsResponse is the "profil onirique" summary of a diary.
type statsResponse struct {
	Total               int64  `json:"total"`
	Reves               int64  `json:"reves"`
	Cauchemars          int64  `json:"cauchemars"`
	StatutReveuse       string `json:"statut_reveuse"`
	PourcentageReveuse  int    `json:"pourcentage_reveuse"`
	LabelReveuse        string `json:"label_reveuse"`
	EmotionDominante    string `json:"emotion_dominante"`
	EmotionDominantePct int    `json:"emotion_dominante_percentage"`
}
