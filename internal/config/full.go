package config

import (
	"encoding/json"
	"strings"
)

// FullConfig is the application config stored in the database (options table, key="configs").
// Mutable at runtime through the configs API, unlike AppConfig.
type FullConfig struct {
	Site            SiteConfig           `json:"site"`
	URL             URLConfig            `json:"url"`
	S3Options       S3Options            `json:"s3_options"`
	MediaOptions    MediaOptions         `json:"media_options"`
	AuthSecurity    AuthSecurity         `json:"auth_security"`
	AI              AIConfig             `json:"ai"`
	Transcription   TranscriptionOptions `json:"transcription"`
	ImageGeneration ImageGenOptions      `json:"image_generation"`
}

type SiteConfig struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

type URLConfig struct {
	WebURL    string `json:"web_url"`
	ServerURL string `json:"server_url"`
}

type S3Options struct {
	Enable          bool   `json:"enable"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	CustomDomain    string `json:"custom_domain"`
	PathStyleAccess bool   `json:"path_style_access"`
	Prefix          string `json:"prefix"`
}

// MediaOptions constrains user uploads.
type MediaOptions struct {
	AudioMaxSizeMB   int    `json:"audio_max_size_mb"`
	AvatarMaxSizeMB  int    `json:"avatar_max_size_mb"`
	AvatarFormats    string `json:"avatar_formats"`
	ImagePathPattern string `json:"image_path_pattern"`
}

type AuthSecurity struct {
	DisablePasswordLogin bool `json:"disable_password_login"`
	SessionTTLHours      int  `json:"session_ttl_hours"`
}

type AIConfig struct {
	Providers           []AIProvider       `json:"providers"`
	InterpretationModel *AIModelAssignment `json:"interpretation_model,omitempty"`
	EmotionModel        *AIModelAssignment `json:"emotion_model,omitempty"`
	PromptSummaryModel  *AIModelAssignment `json:"prompt_summary_model,omitempty"`
}

type AIModelAssignment struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

type AIProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint,omitempty"`
	DefaultModel string `json:"default_model"`
	Enabled      bool   `json:"enabled"`
}

// TranscriptionOptions configures the speech-to-text backend. Any
// OpenAI-compatible audio endpoint works; Groq's whisper hosting is the default.
type TranscriptionOptions struct {
	Enable   bool   `json:"enable"`
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

type ImageGenOptions struct {
	Enable     bool   `json:"enable"`
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
	Size       string `json:"size"`
	UploadToS3 bool   `json:"upload_to_s3"`
}

func (a *AIModelAssignment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProviderID      string `json:"provider_id"`
		ProviderIDCamel string `json:"providerId"`
		Model           string `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.ProviderID = strings.TrimSpace(raw.ProviderID)
	if a.ProviderID == "" {
		a.ProviderID = strings.TrimSpace(raw.ProviderIDCamel)
	}
	a.Model = strings.TrimSpace(raw.Model)
	return nil
}

func (a *AIConfig) UnmarshalJSON(data []byte) error {
	next := *a
	var raw struct {
		Providers           []AIProvider    `json:"providers"`
		InterpretationModel json.RawMessage `json:"interpretation_model"`
		EmotionModel        json.RawMessage `json:"emotion_model"`
		PromptSummaryModel  json.RawMessage `json:"prompt_summary_model"`
		SummaryModel        json.RawMessage `json:"summary_model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Providers != nil {
		next.Providers = raw.Providers
	}

	var err error
	if len(raw.InterpretationModel) > 0 {
		next.InterpretationModel, err = parseAIModelAssignment(raw.InterpretationModel, next.InterpretationModel)
		if err != nil {
			return err
		}
	}
	if len(raw.EmotionModel) > 0 {
		next.EmotionModel, err = parseAIModelAssignment(raw.EmotionModel, next.EmotionModel)
		if err != nil {
			return err
		}
	}
	// summary_model is the pre-rename key for the image prompt model.
	assignment := raw.PromptSummaryModel
	if len(assignment) == 0 {
		assignment = raw.SummaryModel
	}
	if len(assignment) > 0 {
		next.PromptSummaryModel, err = parseAIModelAssignment(assignment, next.PromptSummaryModel)
		if err != nil {
			return err
		}
	}

	*a = next
	return nil
}

func parseAIModelAssignment(raw json.RawMessage, fallback *AIModelAssignment) (*AIModelAssignment, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return fallback, nil
	}
	if trimmed == "null" {
		return nil, nil
	}

	var legacyModel string
	if err := json.Unmarshal(raw, &legacyModel); err == nil {
		legacyModel = strings.TrimSpace(legacyModel)
		if legacyModel == "" {
			return nil, nil
		}
		next := &AIModelAssignment{}
		if fallback != nil {
			*next = *fallback
		}
		next.Model = legacyModel
		return next, nil
	}

	next := &AIModelAssignment{}
	if fallback != nil {
		*next = *fallback
	}
	if err := json.Unmarshal(raw, next); err != nil {
		return nil, err
	}
	if strings.TrimSpace(next.ProviderID) == "" && strings.TrimSpace(next.Model) == "" {
		return nil, nil
	}
	return next, nil
}

func (o *MediaOptions) UnmarshalJSON(data []byte) error {
	next := *o
	var raw struct {
		AudioMaxSizeMB   *int        `json:"audio_max_size_mb"`
		AudioMaxSize     *int        `json:"audio_max_size"`
		AvatarMaxSizeMB  *int        `json:"avatar_max_size_mb"`
		AvatarFormats    interface{} `json:"avatar_formats"`
		ImagePathPattern *string     `json:"image_path_pattern"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.AudioMaxSizeMB != nil {
		next.AudioMaxSizeMB = *raw.AudioMaxSizeMB
	} else if raw.AudioMaxSize != nil {
		next.AudioMaxSizeMB = *raw.AudioMaxSize
	}
	if raw.AvatarMaxSizeMB != nil {
		next.AvatarMaxSizeMB = *raw.AvatarMaxSizeMB
	}
	if raw.AvatarFormats != nil {
		switch val := raw.AvatarFormats.(type) {
		case string:
			next.AvatarFormats = strings.TrimSpace(val)
		case []interface{}:
			items := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					continue
				}
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				items = append(items, s)
			}
			next.AvatarFormats = strings.Join(items, ",")
		}
	}
	if raw.ImagePathPattern != nil {
		next.ImagePathPattern = *raw.ImagePathPattern
	}

	*o = next
	return nil
}

func (t *TranscriptionOptions) UnmarshalJSON(data []byte) error {
	next := *t
	var raw struct {
		Enable   *bool   `json:"enable"`
		Endpoint *string `json:"endpoint"`
		BaseURL  *string `json:"base_url"`
		APIKey   *string `json:"api_key"`
		Model    *string `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Enable != nil {
		next.Enable = *raw.Enable
	}
	if raw.Endpoint != nil {
		next.Endpoint = strings.TrimSpace(*raw.Endpoint)
	} else if raw.BaseURL != nil {
		next.Endpoint = strings.TrimSpace(*raw.BaseURL)
	}
	if raw.APIKey != nil {
		next.APIKey = strings.TrimSpace(*raw.APIKey)
	}
	if raw.Model != nil {
		next.Model = strings.TrimSpace(*raw.Model)
	}

	*t = next
	return nil
}

// DefaultFullConfig returns the config written to the options table on first boot.
func DefaultFullConfig() FullConfig {
	return FullConfig{
		Site: SiteConfig{
			Title:       "Onyria",
			Description: "Ton journal de rêves, transcrit et interprété.",
			Keywords:    []string{},
		},
		URL: URLConfig{
			ServerURL: "http://localhost:8300",
			WebURL:    "http://localhost:3000",
		},
		S3Options: S3Options{
			Enable:          false,
			Endpoint:        "",
			AccessKeyID:     "",
			SecretAccessKey: "",
			Bucket:          "",
			Region:          "auto",
			CustomDomain:    "",
			PathStyleAccess: false,
			Prefix:          "dreams/",
		},
		MediaOptions: MediaOptions{
			AudioMaxSizeMB:   25,
			AvatarMaxSizeMB:  5,
			AvatarFormats:    "jpg,jpeg,png,gif,webp",
			ImagePathPattern: "dreams/{Y}/{m}/{uuid}.{ext}",
		},
		AuthSecurity: AuthSecurity{
			DisablePasswordLogin: false,
			SessionTTLHours:      24 * 30,
		},
		AI: AIConfig{
			Providers: []AIProvider{},
		},
		Transcription: TranscriptionOptions{
			Enable:   true,
			Endpoint: "https://api.groq.com/openai/v1",
			APIKey:   "",
			Model:    "whisper-large-v3",
		},
		ImageGeneration: ImageGenOptions{
			Enable:     true,
			ProviderID: "",
			Model:      "dall-e-3",
			Size:       "1024x1024",
			UploadToS3: false,
		},
	}
}
