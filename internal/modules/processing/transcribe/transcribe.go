// Package transcribe converts uploaded dream recordings to text through a
// Whisper-compatible transcription endpoint.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	appcfg "github.com/onyria-app/core/internal/config"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

var (
	// ErrTranscriptionFailed is returned when the backend is unreachable or
	// returns an empty transcription.
	ErrTranscriptionFailed = errors.New("transcribe: transcription failed")
	// ErrDisabled is returned when transcription is switched off in config.
	ErrDisabled = errors.New("transcribe: transcription is disabled")
	// ErrUnsupportedFormat is returned for file extensions outside the
	// accepted audio formats.
	ErrUnsupportedFormat = errors.New("transcribe: unsupported audio format")
)

const (
	defaultModel    = "whisper-large-v3"
	defaultLanguage = "fr"
)

// requestTimeout bounds a single transcription roundtrip so a hung backend
// cannot pin the request goroutine.
var requestTimeout = 60 * time.Second

// audioMIMETypes maps accepted audio extensions to their upload MIME type.
var audioMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".webm": "audio/webm",
	".flac": "audio/flac",
}

// MIMEForFilename returns the upload MIME type for the file's extension.
func MIMEForFilename(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mime, ok := audioMIMETypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return mime, nil
}

type Service struct{ cfgSvc *configs.Service }

func NewService(cfgSvc *configs.Service) *Service { return &Service{cfgSvc: cfgSvc} }

// Transcribe sends the audio stream to the configured endpoint and returns
// the recognized text.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	opts := cfg.Transcription
	if !opts.Enable {
		return "", ErrDisabled
	}
	return transcribeRequest(ctx, opts, audio, filename)
}

func transcribeRequest(ctx context.Context, opts appcfg.TranscriptionOptions, audio io.Reader, filename string) (string, error) {
	mime, err := MIMEForFilename(filename)
	if err != nil {
		return "", err
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	clientOpts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		openaioption.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		clientOpts = append(clientOpts, openaioption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}
	client := openaiclient.NewClient(clientOpts...)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := client.Audio.Transcriptions.New(ctx, openaiclient.AudioTranscriptionNewParams{
		File:        openaiclient.File(audio, filepath.Base(filename), mime),
		Model:       openaiclient.AudioModel(model),
		Language:    openaiclient.String(defaultLanguage),
		Temperature: openaiclient.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty transcription", ErrTranscriptionFailed)
	}
	return text, nil
}
