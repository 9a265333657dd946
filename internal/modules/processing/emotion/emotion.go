// Package emotion scores a dream narrative against a fixed emotion taxonomy
// and derives the dream type from the emotional balance.
package emotion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/onyria-app/core/internal/modules/processing/ai"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
)

// ErrClassificationFailed is returned when the classification backend is
// unreachable or returns output that cannot be mapped to the taxonomy.
var ErrClassificationFailed = errors.New("emotion: classification failed")

// Labels maps emotion codes to their display names.
var Labels = map[string]string{
	"heureux":   "Joie",
	"anxieux":   "Anxiété",
	"triste":    "Tristesse",
	"en_colere": "Colère",
	"fatigue":   "Fatigue",
	"apeure":    "Peur",
	"surpris":   "Surprise",
	"serein":    "Sérénité",
}

var (
	positiveEmotions = []string{"heureux", "serein", "surpris"}
	negativeEmotions = []string{"anxieux", "triste", "en_colere", "apeure", "fatigue"}
)

const (
	DreamTypeDream     = "rêve"
	DreamTypeNightmare = "cauchemar"
)

// Result holds the normalized emotion distribution and the derived labels.
type Result struct {
	Scores     map[string]float64 `json:"scores"`
	Dominant   string             `json:"dominant"`
	Confidence float64            `json:"confidence"`
	DreamType  string             `json:"dream_type"`
}

type Service struct{ cfgSvc *configs.Service }

func NewService(cfgSvc *configs.Service) *Service { return &Service{cfgSvc: cfgSvc} }

// Analyze scores the text, normalizes with softmax and picks the dominant
// emotion by highest probability.
func (s *Service) Analyze(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrClassificationFailed)
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	provider := ai.SelectProvider(cfg.AI, cfg.AI.EmotionModel)
	if provider == nil {
		return nil, fmt.Errorf("%w: no enabled AI provider", ErrClassificationFailed)
	}

	systemPrompt, prompt := buildEmotionPrompt(text)
	raw, err := ai.Generate(ctx, provider, systemPrompt, prompt, emotionMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	return ParseScores(raw)
}

// ParseScores decodes raw model output into a Result. Unknown emotion codes
// are dropped; at least one known code must remain.
func ParseScores(raw string) (*Result, error) {
	var payload map[string]float64
	if err := ai.DecodeJSON(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	preds := make(map[string]float64, len(Labels))
	for code, score := range payload {
		if _, ok := Labels[code]; ok {
			preds[code] = score
		}
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: no known emotion in response", ErrClassificationFailed)
	}

	scores := Softmax(preds)
	dominant, confidence := Dominant(scores)
	return &Result{
		Scores:     scores,
		Dominant:   dominant,
		Confidence: confidence,
		DreamType:  ClassifyDreamType(scores),
	}, nil
}

// Softmax turns raw prediction scores into a probability distribution.
func Softmax(preds map[string]float64) map[string]float64 {
	exp := make(map[string]float64, len(preds))
	var total float64
	for k, v := range preds {
		e := math.Exp(v)
		exp[k] = e
		total += e
	}
	out := make(map[string]float64, len(preds))
	for k, v := range exp {
		out[k] = v / total
	}
	return out
}

// Dominant returns the emotion with the highest probability. Ties break on
// the lexicographically smaller code so the result is deterministic.
func Dominant(scores map[string]float64) (string, float64) {
	var best string
	bestScore := math.Inf(-1)
	for code, score := range scores {
		if score > bestScore || (score == bestScore && code < best) {
			best = code
			bestScore = score
		}
	}
	return best, bestScore
}

// ClassifyDreamType labels the dream a nightmare when the mean negative
// probability outweighs the mean positive one.
func ClassifyDreamType(scores map[string]float64) string {
	if meanOf(scores, negativeEmotions) > meanOf(scores, positiveEmotions) {
		return DreamTypeNightmare
	}
	return DreamTypeDream
}

func meanOf(scores map[string]float64, codes []string) float64 {
	var sum float64
	var n int
	for _, code := range codes {
		if score, ok := scores[code]; ok {
			sum += score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
