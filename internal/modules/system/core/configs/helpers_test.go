package configs

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDeepMergeJSON(t *testing.T) {
	old := map[string]interface{}{
		"a": map[string]interface{}{"x": 1.0, "y": 2.0},
		"b": []interface{}{1.0, 2.0},
		"c": "keep",
	}
	upd := map[string]interface{}{
		"a": map[string]interface{}{"y": 3.0},
		"b": []interface{}{9.0},
	}

	merged, ok := deepMergeJSON(old, upd).(map[string]interface{})
	if !ok {
		t.Fatalf("expected map result")
	}

	a := merged["a"].(map[string]interface{})
	if a["x"] != 1.0 || a["y"] != 3.0 {
		t.Fatalf("nested merge wrong: %+v", a)
	}
	// Arrays are replaced, not merged.
	if !reflect.DeepEqual(merged["b"], []interface{}{9.0}) {
		t.Fatalf("array should be replaced, got %+v", merged["b"])
	}
	if merged["c"] != "keep" {
		t.Fatalf("untouched key lost")
	}
}

func TestNormalizeAISectionLegacyKey(t *testing.T) {
	section := map[string]interface{}{
		"summary_model": map[string]interface{}{"provider_id": "groq", "model": "llama-3.1-8b-instant"},
	}
	out := normalizeAISection(section).(map[string]interface{})
	if _, ok := out["summary_model"]; ok {
		t.Fatalf("legacy key should be removed")
	}
	got, ok := out["prompt_summary_model"].(map[string]interface{})
	if !ok || got["provider_id"] != "groq" {
		t.Fatalf("legacy value not remapped: %+v", out)
	}
}

func TestNormalizeTranscriptionSection(t *testing.T) {
	section := map[string]interface{}{"base_url": "https://api.groq.com/openai/v1"}
	out := normalizeTranscriptionSection(section).(map[string]interface{})
	if out["endpoint"] != "https://api.groq.com/openai/v1" {
		t.Fatalf("base_url alias not applied: %+v", out)
	}
	if _, ok := out["base_url"]; ok {
		t.Fatalf("legacy key should be removed")
	}
}

func TestCamelSnakeKeyConversion(t *testing.T) {
	cases := map[string]string{
		"audioMaxSizeMB":  "audio_max_size_mb",
		"sessionTTLHours": "session_ttl_hours",
		"providerId":      "provider_id",
		"s3_options":      "s3_options",
	}
	for in, want := range cases {
		if got := camelToSnakeKey(in); got != want {
			t.Errorf("camelToSnakeKey(%q) = %q, want %q", in, got, want)
		}
	}

	if got := snakeToCamelKey("audio_max_size_mb"); got != "audioMaxSizeMB" {
		t.Errorf("snakeToCamelKey mb special case: got %q", got)
	}
	if got := snakeToCamelKey("session_ttl_hours"); got != "sessionTTLHours" {
		t.Errorf("snakeToCamelKey ttl special case: got %q", got)
	}
}

func TestNormalizeJSONKeys(t *testing.T) {
	raw := json.RawMessage(`{"avatarMaxSizeMB": 5, "imagePathPattern": "dreams/{Y}/{m}/{uuid}.{ext}"}`)
	out, err := normalizeJSONKeys(raw, camelToSnakeKey)
	if err != nil {
		t.Fatalf("normalizeJSONKeys: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["avatar_max_size_mb"]; !ok {
		t.Fatalf("key not converted: %+v", m)
	}
}
