package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appcfg "github.com/onyria-app/core/internal/config"
)

func TestMIMEForFilename(t *testing.T) {
	cases := map[string]string{
		"dream.wav":          "audio/wav",
		"Enregistrement.MP3": "audio/mpeg",
		"morning.m4a":        "audio/mp4",
		"songe.webm":         "audio/webm",
		"nuit.flac":          "audio/flac",
	}
	for filename, want := range cases {
		got, err := MIMEForFilename(filename)
		if err != nil {
			t.Fatalf("MIMEForFilename(%q): %v", filename, err)
		}
		if got != want {
			t.Errorf("MIMEForFilename(%q) = %q, want %q", filename, got, want)
		}
	}
}

func TestMIMEForFilenameRejectsUnknown(t *testing.T) {
	for _, filename := range []string{"dream.txt", "dream.png", "dream"} {
		if _, err := MIMEForFilename(filename); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("MIMEForFilename(%q): expected ErrUnsupportedFormat, got %v", filename, err)
		}
	}
}

func TestTranscribeRequestReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  Je volais au-dessus de la mer.  "}`))
	}))
	defer srv.Close()

	opts := appcfg.TranscriptionOptions{Enable: true, Endpoint: srv.URL, APIKey: "test-key"}
	text, err := transcribeRequest(context.Background(), opts, strings.NewReader("fake audio"), "dream.wav")
	if err != nil {
		t.Fatalf("transcribeRequest: %v", err)
	}
	if text != "Je volais au-dessus de la mer." {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeRequestTimesOutOnHungBackend(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	saved := requestTimeout
	requestTimeout = 50 * time.Millisecond
	defer func() { requestTimeout = saved }()

	opts := appcfg.TranscriptionOptions{Enable: true, Endpoint: srv.URL, APIKey: "test-key"}
	start := time.Now()
	_, err := transcribeRequest(context.Background(), opts, strings.NewReader("fake audio"), "dream.wav")
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("call was not bounded, took %s", elapsed)
	}
}
