package dream

import (
	"encoding/json"
	"testing"

	"github.com/onyria-app/core/internal/models"
	"github.com/onyria-app/core/internal/modules/processing/interpret"
)

func TestComputeStatsEmptyDiary(t *testing.T) {
	stats := computeStats(nil, nil)

	if stats.StatutReveuse != "silence onirique" {
		t.Errorf("statut = %q, want %q", stats.StatutReveuse, "silence onirique")
	}
	if stats.LabelReveuse != "rêves enregistrés" {
		t.Errorf("label = %q, want %q", stats.LabelReveuse, "rêves enregistrés")
	}
	if stats.EmotionDominante != "émotion endormie" {
		t.Errorf("emotion = %q, want %q", stats.EmotionDominante, "émotion endormie")
	}
	if stats.PourcentageReveuse != 0 || stats.EmotionDominantePct != 0 {
		t.Errorf("percentages should be 0, got %d and %d", stats.PourcentageReveuse, stats.EmotionDominantePct)
	}
}

func TestComputeStatsOnlyDreams(t *testing.T) {
	stats := computeStats(
		map[string]int64{"rêve": 4},
		map[string]int64{"heureux": 4},
	)

	if stats.StatutReveuse != "âme rêveuse" {
		t.Errorf("statut = %q, want %q", stats.StatutReveuse, "âme rêveuse")
	}
	if stats.PourcentageReveuse != 100 {
		t.Errorf("pourcentage = %d, want 100", stats.PourcentageReveuse)
	}
	if stats.LabelReveuse != "rêves" {
		t.Errorf("label = %q, want %q", stats.LabelReveuse, "rêves")
	}
	if stats.EmotionDominante != "heureux" || stats.EmotionDominantePct != 100 {
		t.Errorf("emotion = %q/%d, want heureux/100", stats.EmotionDominante, stats.EmotionDominantePct)
	}
}

func TestComputeStatsMostlyDreams(t *testing.T) {
	stats := computeStats(
		map[string]int64{"rêve": 3, "cauchemar": 1},
		map[string]int64{"heureux": 2, "apeure": 1, "serein": 1},
	)

	if stats.StatutReveuse != "âme rêveuse" {
		t.Errorf("statut = %q, want %q", stats.StatutReveuse, "âme rêveuse")
	}
	if stats.PourcentageReveuse != 75 {
		t.Errorf("pourcentage = %d, want 75", stats.PourcentageReveuse)
	}
	if stats.EmotionDominante != "heureux" || stats.EmotionDominantePct != 50 {
		t.Errorf("emotion = %q/%d, want heureux/50", stats.EmotionDominante, stats.EmotionDominantePct)
	}
}

func TestComputeStatsMostlyNightmares(t *testing.T) {
	stats := computeStats(
		map[string]int64{"rêve": 1, "cauchemar": 3},
		map[string]int64{"apeure": 2, "anxieux": 1, "heureux": 1},
	)

	if stats.StatutReveuse != "en proie aux cauchemars" {
		t.Errorf("statut = %q, want %q", stats.StatutReveuse, "en proie aux cauchemars")
	}
	if stats.PourcentageReveuse != 75 {
		t.Errorf("pourcentage = %d, want 75", stats.PourcentageReveuse)
	}
	if stats.LabelReveuse != "cauchemars" {
		t.Errorf("label = %q, want %q", stats.LabelReveuse, "cauchemars")
	}
	if stats.EmotionDominante != "apeure" || stats.EmotionDominantePct != 50 {
		t.Errorf("emotion = %q/%d, want apeure/50", stats.EmotionDominante, stats.EmotionDominantePct)
	}
}

func TestComputeStatsTieFavorsDreams(t *testing.T) {
	stats := computeStats(
		map[string]int64{"rêve": 2, "cauchemar": 2},
		map[string]int64{"heureux": 2, "apeure": 2},
	)

	if stats.StatutReveuse != "âme rêveuse" {
		t.Errorf("statut = %q, want %q on a tie", stats.StatutReveuse, "âme rêveuse")
	}
	if stats.PourcentageReveuse != 50 {
		t.Errorf("pourcentage = %d, want 50", stats.PourcentageReveuse)
	}
	// Emotion ties break on the lexicographically smaller code.
	if stats.EmotionDominante != "apeure" {
		t.Errorf("emotion = %q, want apeure", stats.EmotionDominante)
	}
}

func TestComputeStatsTruncatesPercentages(t *testing.T) {
	stats := computeStats(
		map[string]int64{"rêve": 2, "cauchemar": 1},
		map[string]int64{"heureux": 2, "triste": 1},
	)

	if stats.PourcentageReveuse != 66 {
		t.Errorf("pourcentage = %d, want 66 (truncated)", stats.PourcentageReveuse)
	}
	if stats.EmotionDominantePct != 66 {
		t.Errorf("emotion percentage = %d, want 66 (truncated)", stats.EmotionDominantePct)
	}
	if !jsonIsInt(t, stats) {
		t.Error("percentages must marshal as integers")
	}
}

func jsonIsInt(t *testing.T, stats statsResponse) bool {
	t.Helper()
	raw, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal stats: %v", err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	return string(out["pourcentage_reveuse"]) == "66" && string(out["emotion_dominante_percentage"]) == "66"
}

func TestEmotionTupleJSON(t *testing.T) {
	raw, err := json.Marshal(EmotionTuple{Label: "Joie", Confidence: 0.5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `["Joie",0.5]` {
		t.Errorf("marshal = %s, want [\"Joie\",0.5]", raw)
	}

	var tuple EmotionTuple
	if err := json.Unmarshal(raw, &tuple); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tuple.Label != "Joie" || tuple.Confidence != 0.5 {
		t.Errorf("round trip lost data: %+v", tuple)
	}

	if err := json.Unmarshal([]byte(`["Joie"]`), &tuple); err == nil {
		t.Error("expected an error for a single-element tuple")
	}
}

func TestLabelFallbacks(t *testing.T) {
	if got := emotionLabel("heureux"); got != "Joie" {
		t.Errorf("emotionLabel(heureux) = %q, want Joie", got)
	}
	if got := emotionLabel("nostalgie"); got != "nostalgie" {
		t.Errorf("emotionLabel should fall back to the raw code, got %q", got)
	}
	if got := dreamTypeLabel("cauchemar"); got != "Cauchemar" {
		t.Errorf("dreamTypeLabel(cauchemar) = %q, want Cauchemar", got)
	}
}

func TestNewAnalyzeResponseEnvelope(t *testing.T) {
	record := &interpret.Record{
		Freudien:     "Une lecture freudienne.",
		Symbolique:   "Une lecture symbolique.",
		Cognitive:    "Une lecture cognitive.",
		Emotionnelle: "Une synthèse émotionnelle.",
	}
	entry := &models.DreamModel{
		Transcription:     "Je volais au-dessus d'une ville.",
		DominantEmotion:   "heureux",
		EmotionConfidence: 0.5,
		DreamType:         "rêve",
		IsAnalyzed:        true,
	}
	entry.ID = "d-1"

	raw, err := json.Marshal(newAnalyzeResponse(entry, record))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if string(out["success"]) != "true" {
		t.Errorf("success = %s, want true", out["success"])
	}
	if string(out["dominant_emotion"]) != `["Joie",0.5]` {
		t.Errorf("dominant_emotion = %s, want [\"Joie\",0.5]", out["dominant_emotion"])
	}
	if string(out["dream_type"]) != `"Rêve"` {
		t.Errorf("dream_type = %s, want \"Rêve\"", out["dream_type"])
	}
	if string(out["image_path"]) != "null" {
		t.Errorf("image_path = %s, want null when no image was generated", out["image_path"])
	}
	if _, ok := out["error"]; ok {
		t.Error("error key must be absent on success")
	}

	var lenses map[string]string
	if err := json.Unmarshal(out["interpretation"], &lenses); err != nil {
		t.Fatalf("unmarshal interpretation: %v", err)
	}
	if len(lenses) != len(interpret.Lenses) {
		t.Errorf("interpretation has %d keys, want %d", len(lenses), len(interpret.Lenses))
	}
	for _, lens := range interpret.Lenses {
		if lenses[lens] == "" {
			t.Errorf("interpretation is missing the %q lens", lens)
		}
	}
}

func TestParseInterpretation(t *testing.T) {
	if parseInterpretation("") != nil {
		t.Error("empty stored interpretation should yield nil")
	}
	if parseInterpretation("{broken") != nil {
		t.Error("unparseable stored interpretation should yield nil")
	}
	record := parseInterpretation(`{"Freudien":"a","Symbolique":"b","Cognitivo-scientifique":"c","Émotionnelle":"d"}`)
	if record == nil || record.Symbolique != "b" {
		t.Errorf("parseInterpretation lost data: %+v", record)
	}
}
