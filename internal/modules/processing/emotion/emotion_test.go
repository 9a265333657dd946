package emotion

import (
	"errors"
	"math"
	"testing"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	preds := map[string]float64{"heureux": 8, "apeure": 1, "serein": 5}
	scores := Softmax(preds)

	var sum float64
	for _, v := range scores {
		if v <= 0 || v >= 1 {
			t.Fatalf("score out of (0,1): %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("softmax sum = %v", sum)
	}
	if scores["heureux"] <= scores["serein"] || scores["serein"] <= scores["apeure"] {
		t.Fatalf("softmax should preserve ordering: %+v", scores)
	}
}

func TestDominant(t *testing.T) {
	scores := Softmax(map[string]float64{"triste": 9, "heureux": 1, "fatigue": 3})
	code, confidence := Dominant(scores)
	if code != "triste" {
		t.Fatalf("dominant = %q", code)
	}
	if confidence <= 0 || confidence > 1 {
		t.Fatalf("confidence out of range: %v", confidence)
	}
}

func TestClassifyDreamType(t *testing.T) {
	nightmare := Softmax(map[string]float64{
		"apeure": 9, "anxieux": 7, "triste": 5,
		"heureux": 1, "serein": 0, "surpris": 2,
	})
	if got := ClassifyDreamType(nightmare); got != DreamTypeNightmare {
		t.Fatalf("expected %q, got %q", DreamTypeNightmare, got)
	}

	pleasant := Softmax(map[string]float64{
		"heureux": 9, "serein": 8, "surpris": 3,
		"apeure": 1, "anxieux": 0, "triste": 0,
	})
	if got := ClassifyDreamType(pleasant); got != DreamTypeDream {
		t.Fatalf("expected %q, got %q", DreamTypeDream, got)
	}
}

func TestParseScores(t *testing.T) {
	raw := `{"heureux":1,"anxieux":8,"triste":4,"en_colere":2,"fatigue":3,"apeure":9,"surpris":1,"serein":0}`
	result, err := ParseScores(raw)
	if err != nil {
		t.Fatalf("ParseScores: %v", err)
	}
	if result.Dominant != "apeure" {
		t.Fatalf("dominant = %q", result.Dominant)
	}
	if result.DreamType != DreamTypeNightmare {
		t.Fatalf("dream type = %q", result.DreamType)
	}
	if len(result.Scores) != 8 {
		t.Fatalf("expected 8 scores, got %d", len(result.Scores))
	}
}

func TestParseScoresDropsUnknownCodes(t *testing.T) {
	raw := `{"heureux":5,"nostalgie":9}`
	result, err := ParseScores(raw)
	if err != nil {
		t.Fatalf("ParseScores: %v", err)
	}
	if _, ok := result.Scores["nostalgie"]; ok {
		t.Fatal("unknown code kept in scores")
	}
	if result.Dominant != "heureux" {
		t.Fatalf("dominant = %q", result.Dominant)
	}
}

func TestParseScoresRejectsGarbage(t *testing.T) {
	if _, err := ParseScores("pas du JSON"); !errors.Is(err, ErrClassificationFailed) {
		t.Fatalf("expected ErrClassificationFailed, got %v", err)
	}
	if _, err := ParseScores(`{"inconnu":1}`); !errors.Is(err, ErrClassificationFailed) {
		t.Fatalf("expected ErrClassificationFailed for unknown-only payload, got %v", err)
	}
}
