package interpret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	appcfg "github.com/onyria-app/core/internal/config"
)

const sampleInterpretation = `{
	"Freudien": "Le rêve exprime un désir refoulé. La chute traduit une perte de maîtrise. Aucun symbole parental explicite n'apparaît dans le récit.",
	"Symbolique": "L'eau renvoie aux émotions profondes. La chute évoque la perte de contrôle. La noyade prolonge ce symbole de submersion émotionnelle.",
	"Cognitivo-scientifique": "Le scénario ressemble à une simulation de menace. Le cerveau répète une situation de danger pour s'y préparer. Cette répétition participe à la régulation émotionnelle.",
	"Émotionnelle": "La peur domine le récit. Elle signale un sentiment d'impuissance face aux événements. Cette tonalité remplit une fonction d'alerte."
}`

func TestParseRecordValid(t *testing.T) {
	record, err := ParseRecord(sampleInterpretation)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	for _, lens := range Lenses {
		value := record.value(lens)
		if value == "" {
			t.Fatalf("lens %q is empty", lens)
		}
		if n := strings.Count(value, "."); n > 4 {
			t.Fatalf("lens %q has too many sentences (%d)", lens, n)
		}
	}
}

func TestParseRecordFencedPayload(t *testing.T) {
	fenced := "```json\n" + sampleInterpretation + "\n```"
	if _, err := ParseRecord(fenced); err != nil {
		t.Fatalf("fenced payload rejected: %v", err)
	}
}

func TestParseRecordMissingKey(t *testing.T) {
	payload := `{"Freudien":"a.","Symbolique":"b.","Cognitivo-scientifique":"c."}`
	if _, err := ParseRecord(payload); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape for missing lens, got %v", err)
	}
}

func TestParseRecordEmptyValue(t *testing.T) {
	payload := `{"Freudien":"a.","Symbolique":" ","Cognitivo-scientifique":"c.","Émotionnelle":"d."}`
	if _, err := ParseRecord(payload); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape for blank lens value, got %v", err)
	}
}

func TestParseRecordExtraKey(t *testing.T) {
	payload := `{"Freudien":"a.","Symbolique":"b.","Cognitivo-scientifique":"c.","Émotionnelle":"d.","Jungien":"e."}`
	if _, err := ParseRecord(payload); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape for extra key, got %v", err)
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	original, err := ParseRecord(sampleInterpretation)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Key order must follow the canonical lens order.
	text := string(data)
	last := -1
	for _, lens := range Lenses {
		idx := strings.Index(text, fmt.Sprintf("%q", lens))
		if idx < 0 {
			t.Fatalf("marshalled record misses %q", lens)
		}
		if idx < last {
			t.Fatalf("lens %q out of order in %s", lens, text)
		}
		last = idx
	}

	var decoded Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != *original {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", decoded, *original)
	}
}

func TestGenerateEmptyNarrative(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Generate(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func newFakeProvider(url string) *appcfg.AIProvider {
	return &appcfg.AIProvider{
		ID:           "fake",
		Type:         "openai-compatible",
		APIKey:       "test-key",
		Endpoint:     url,
		DefaultModel: "mistral-small-latest",
		Enabled:      true,
	}
}

func chatCompletionBody(content string) string {
	payload := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestGenerateWithRetrySucceedsOnSecondAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			// Missing one lens: must trigger the single retry.
			w.Write([]byte(chatCompletionBody(`{"Freudien":"a.","Symbolique":"b.","Cognitivo-scientifique":"c."}`)))
			return
		}
		w.Write([]byte(chatCompletionBody(sampleInterpretation)))
	}))
	defer srv.Close()

	// A falling-then-drowning narrative: the symbolic lens must tie those
	// elements to loss of control and emotional submersion.
	record, err := generateWithRetry(context.Background(), newFakeProvider(srv.URL), "Je tombais dans l'eau noire et je me noyais.")
	if err != nil {
		t.Fatalf("generateWithRetry: %v", err)
	}
	for _, motif := range []string{"perte de contrôle", "submersion émotionnelle"} {
		if !strings.Contains(record.Symbolique, motif) {
			t.Errorf("Symbolique lens misses %q: %q", motif, record.Symbolique)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestGenerateWithRetrySkipsRetryOnBackendError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := generateWithRetry(context.Background(), newFakeProvider(srv.URL), "Je marchais dans une forêt de verre.")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("backend errors must not be retried, got %d calls", got)
	}
}

func TestGenerateWithRetrySurfacesFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(chatCompletionBody("pas du JSON")))
	}))
	defer srv.Close()

	_, err := generateWithRetry(context.Background(), newFakeProvider(srv.URL), "Je volais au-dessus de la ville.")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", got)
	}
}
