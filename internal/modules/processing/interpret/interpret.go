// Package interpret turns a dream narrative into four fixed-lens readings.
package interpret

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appcfg "github.com/onyria-app/core/internal/config"
	"github.com/onyria-app/core/internal/modules/processing/ai"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
)

var (
	// ErrInvalidInput is returned when the narrative is empty or missing.
	ErrInvalidInput = errors.New("interpret: empty dream narrative")
	// ErrGenerationFailed is returned when the generation backend is
	// unreachable or keeps producing output that fails schema validation.
	ErrGenerationFailed = errors.New("interpret: generation failed")
	// ErrInvalidShape marks a model response that failed the four-lens
	// schema validation. Only this class of failure is retried.
	ErrInvalidShape = errors.New("interpret: response failed schema validation")
)

// Lenses lists the four interpretation keys in their canonical order.
var Lenses = []string{"Freudien", "Symbolique", "Cognitivo-scientifique", "Émotionnelle"}

// Record holds one reading per lens. Field order matches Lenses so the
// marshalled JSON keeps the canonical key order.
type Record struct {
	Freudien     string `json:"Freudien"`
	Symbolique   string `json:"Symbolique"`
	Cognitive    string `json:"Cognitivo-scientifique"`
	Emotionnelle string `json:"Émotionnelle"`
}

func (r *Record) value(lens string) string {
	switch lens {
	case "Freudien":
		return r.Freudien
	case "Symbolique":
		return r.Symbolique
	case "Cognitivo-scientifique":
		return r.Cognitive
	case "Émotionnelle":
		return r.Emotionnelle
	}
	return ""
}

func (r *Record) set(lens, value string) {
	switch lens {
	case "Freudien":
		r.Freudien = value
	case "Symbolique":
		r.Symbolique = value
	case "Cognitivo-scientifique":
		r.Cognitive = value
	case "Émotionnelle":
		r.Emotionnelle = value
	}
}

type Service struct{ cfgSvc *configs.Service }

func NewService(cfgSvc *configs.Service) *Service { return &Service{cfgSvc: cfgSvc} }

// Generate produces a Record for the given narrative. A response that fails
// schema validation triggers exactly one retry before the error is surfaced.
func (s *Service) Generate(ctx context.Context, narrative string) (*Record, error) {
	if strings.TrimSpace(narrative) == "" {
		return nil, ErrInvalidInput
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	provider := ai.SelectProvider(cfg.AI, cfg.AI.InterpretationModel)
	if provider == nil {
		return nil, fmt.Errorf("%w: no enabled AI provider", ErrGenerationFailed)
	}

	return generateWithRetry(ctx, provider, narrative)
}

func generateWithRetry(ctx context.Context, provider *appcfg.AIProvider, narrative string) (*Record, error) {
	record, err := generateOnce(ctx, provider, narrative)
	if err == nil {
		return record, nil
	}
	if ctx.Err() != nil || !errors.Is(err, ErrInvalidShape) {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	record, retryErr := generateOnce(ctx, provider, narrative)
	if retryErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, retryErr)
	}
	return record, nil
}

func generateOnce(ctx context.Context, provider *appcfg.AIProvider, narrative string) (*Record, error) {
	systemPrompt, prompt := buildInterpretationPrompt(narrative)
	raw, err := ai.Generate(ctx, provider, systemPrompt, prompt, interpretationMaxTokens)
	if err != nil {
		return nil, err
	}
	return ParseRecord(raw)
}

// ParseRecord decodes a model response and enforces the four-key schema:
// exactly the lenses in Lenses, every value a non-empty string.
func ParseRecord(raw string) (*Record, error) {
	var payload map[string]string
	if err := ai.DecodeJSON(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	record := &Record{}
	for _, lens := range Lenses {
		value, ok := payload[lens]
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: missing the %q lens", ErrInvalidShape, lens)
		}
		record.set(lens, strings.TrimSpace(value))
	}
	if len(payload) != len(Lenses) {
		for key := range payload {
			if record.value(key) == "" {
				return nil, fmt.Errorf("%w: unexpected key %q", ErrInvalidShape, key)
			}
		}
	}
	return record, nil
}
