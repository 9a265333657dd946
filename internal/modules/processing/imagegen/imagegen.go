// Package imagegen renders a dream narrative into an illustration through an
// image generation provider, saving the result locally or on S3.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	appcfg "github.com/onyria-app/core/internal/config"
	"github.com/onyria-app/core/internal/modules/processing/ai"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
	"github.com/onyria-app/core/internal/pkg/storage"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
)

// ErrGenerationFailed is returned when the image backend is unreachable or
// returns no image. Callers degrade to a null image reference.
var ErrGenerationFailed = errors.New("imagegen: image generation failed")

// ErrDisabled is returned when image generation is switched off in config.
var ErrDisabled = errors.New("imagegen: image generation is disabled")

const (
	defaultModel = "dall-e-3"
	defaultSize  = "1024x1024"
)

// requestTimeout bounds the image backend roundtrip so a hung provider
// cannot pin the request goroutine.
var requestTimeout = 60 * time.Second

type Service struct {
	cfgSvc   *configs.Service
	mediaDir string
	logger   *zap.Logger
}

type ServiceOption func(*Service)

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(cfgSvc *configs.Service, mediaDir string, opts ...ServiceOption) *Service {
	s := &Service{cfgSvc: cfgSvc, mediaDir: mediaDir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result describes a stored dream illustration.
type Result struct {
	// Path is the web-reachable reference: either a /media/ path or an S3 URL.
	Path string
	// Prompt is the condensed visual prompt the image was generated from.
	Prompt string
}

// Generate condenses the narrative into a visual prompt, renders it and
// stores the PNG. The returned path is ready to embed in API responses.
func (s *Service) Generate(ctx context.Context, narrative string) (*Result, error) {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if !cfg.ImageGeneration.Enable {
		return nil, ErrDisabled
	}

	prompt, err := s.summarizePrompt(ctx, cfg, narrative)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	payload, err := s.renderImage(ctx, cfg, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	relPath := buildImagePath(cfg.MediaOptions.ImagePathPattern, time.Now(), "png")

	if cfg.ImageGeneration.UploadToS3 && cfg.S3Options.Enable {
		uploader, err := storage.NewS3Uploader(cfg.S3Options)
		if err == nil {
			url, upErr := uploader.Upload(ctx, relPath, payload, "image/png")
			if upErr == nil {
				return &Result{Path: url, Prompt: prompt}, nil
			}
			s.logger.Warn("s3 upload failed, falling back to local storage", zap.Error(upErr))
		} else {
			s.logger.Warn("s3 uploader unavailable", zap.Error(err))
		}
	}

	fullPath := filepath.Join(s.mediaDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if err := os.WriteFile(fullPath, payload, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &Result{Path: "/media/" + relPath, Prompt: prompt}, nil
}

// summarizePrompt condenses the narrative into a short scene description the
// image model can work with.
func (s *Service) summarizePrompt(ctx context.Context, cfg *appcfg.FullConfig, narrative string) (string, error) {
	provider := ai.SelectProvider(cfg.AI, cfg.AI.PromptSummaryModel)
	if provider == nil {
		return "", errors.New("no enabled AI provider")
	}
	systemPrompt, prompt := buildPromptSummaryPrompt(narrative)
	out, err := ai.Generate(ctx, provider, systemPrompt, prompt, promptSummaryMaxTokens)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("empty visual prompt")
	}
	return out, nil
}

func (s *Service) renderImage(ctx context.Context, cfg *appcfg.FullConfig, prompt string) ([]byte, error) {
	gen := cfg.ImageGeneration
	provider := ai.SelectProvider(cfg.AI, &appcfg.AIModelAssignment{ProviderID: gen.ProviderID})
	if provider == nil {
		return nil, errors.New("no enabled AI provider for image generation")
	}

	model := strings.TrimSpace(gen.Model)
	if model == "" {
		model = defaultModel
	}
	size := strings.TrimSpace(gen.Size)
	if size == "" {
		size = defaultSize
	}

	clientOpts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(provider.APIKey)),
		openaioption.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(provider.Endpoint); endpoint != "" {
		clientOpts = append(clientOpts, openaioption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}
	client := openaiclient.NewClient(clientOpts...)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := client.Images.Generate(ctx, openaiclient.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openaiclient.ImageModel(model),
		Size:           openaiclient.ImageGenerateParamsSize(size),
		ResponseFormat: openaiclient.ImageGenerateParamsResponseFormatB64JSON,
		N:              openaiclient.Int(1),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("no image in response")
	}
	payload, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// buildImagePath expands the configured pattern. Supported placeholders:
// {Y} {m} {d} {uuid} {ext}.
func buildImagePath(pattern string, now time.Time, ext string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = "dreams/{Y}/{m}/{uuid}.{ext}"
	}
	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{uuid}", uuid.NewString(),
		"{ext}", ext,
	)
	return strings.Trim(replacer.Replace(pattern), "/")
}
