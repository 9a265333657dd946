package configs

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

func deepMergeJSON(oldVal, newVal interface{}) interface{} {
	oldMap, oldIsMap := oldVal.(map[string]interface{})
	newMap, newIsMap := newVal.(map[string]interface{})
	if oldIsMap && newIsMap {
		out := make(map[string]interface{}, len(oldMap))
		for k, v := range oldMap {
			out[k] = v
		}
		for k, v := range newMap {
			if existing, ok := out[k]; ok {
				out[k] = deepMergeJSON(existing, v)
				continue
			}
			out[k] = v
		}
		return out
	}

	// Arrays should be replaced as a whole.
	if _, ok := newVal.([]interface{}); ok {
		return newVal
	}

	return newVal
}

func normalizeConfigSection(key string, v interface{}) interface{} {
	switch key {
	case "ai":
		return normalizeAISection(v)
	case "transcription":
		return normalizeTranscriptionSection(v)
	case "media_options":
		return normalizeMediaOptions(v)
	default:
		return v
	}
}

// normalizeAISection renames the legacy summary_model key to prompt_summary_model
// so stored configs from older deployments keep working after a patch.
func normalizeAISection(v interface{}) interface{} {
	sectionMap, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	if _, exists := sectionMap["prompt_summary_model"]; !exists {
		if legacy, ok := sectionMap["summary_model"]; ok {
			sectionMap["prompt_summary_model"] = legacy
		}
	}
	delete(sectionMap, "summary_model")
	return sectionMap
}

func normalizeTranscriptionSection(v interface{}) interface{} {
	sectionMap, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	if _, exists := sectionMap["endpoint"]; !exists {
		if legacy, ok := sectionMap["base_url"]; ok {
			sectionMap["endpoint"] = legacy
		}
	}
	delete(sectionMap, "base_url")
	return sectionMap
}

func normalizeMediaOptions(v interface{}) interface{} {
	sectionMap, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	if _, exists := sectionMap["audio_max_size_mb"]; !exists {
		if legacy, ok := sectionMap["audio_max_size"]; ok {
			sectionMap["audio_max_size_mb"] = legacy
		}
	}
	delete(sectionMap, "audio_max_size")
	if _, exists := sectionMap["avatar_max_size_mb"]; !exists {
		if legacy, ok := sectionMap["avatar_max_size"]; ok {
			sectionMap["avatar_max_size_mb"] = legacy
		}
	}
	delete(sectionMap, "avatar_max_size")
	return sectionMap
}

var optionKeyAliases = map[string]string{
	"site":             "site",
	"url":              "url",
	"s3_options":       "s3_options",
	"media_options":    "media_options",
	"auth_security":    "auth_security",
	"ai":               "ai",
	"transcription":    "transcription",
	"image_generation": "image_generation",
}

func normalizeOptionKey(key string) string {
	snake := camelToSnakeKey(key)
	if _, ok := optionKeyAliases[snake]; ok {
		return snake
	}
	return snake
}

func normalizeJSONKeys(raw json.RawMessage, keyFn func(string) string) (json.RawMessage, error) {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid json body")
	}
	normalized := convertMapKeys(data, keyFn)
	out, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func convertMapKeys(v interface{}, keyFn func(string) string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[keyFn(k)] = convertMapKeys(child, keyFn)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = convertMapKeys(child, keyFn)
		}
		return out
	default:
		return val
	}
}

func snakeToCamelKey(s string) string {
	if s == "" {
		return s
	}
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	out := make([]rune, 0, len(s))
	out = append(out, []rune(parts[0])...)
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		switch lower {
		case "mb":
			out = append(out, []rune("MB")...)
			continue
		case "ttl":
			out = append(out, []rune("TTL")...)
			continue
		}
		runes := []rune(lower)
		runes[0] = unicode.ToUpper(runes[0])
		out = append(out, runes...)
	}
	return string(out)
}

func camelToSnakeKey(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.TrimSpace(s))
	if len(runes) == 0 {
		return ""
	}
	out := make([]rune, 0, len(runes)+4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower {
					out = append(out, '_')
				}
			}
			out = append(out, unicode.ToLower(r))
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
