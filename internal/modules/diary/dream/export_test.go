package dream

import (
	"strings"
	"testing"
	"time"

	"github.com/onyria-app/core/internal/models"
)

func testEntry() *models.DreamModel {
	entry := &models.DreamModel{
		Transcription:      "Je tombais dans une mer sombre.",
		DominantEmotion:    "apeure",
		EmotionConfidence:  0.62,
		DreamType:          "cauchemar",
		InterpretationJSON: `{"Freudien":"F.","Symbolique":"S.","Cognitivo-scientifique":"C.","Émotionnelle":"E."}`,
		ImagePath:          "/media/dreams/2026/03/x.png",
		IsAnalyzed:         true,
	}
	entry.ID = "d-42"
	entry.CreatedAt = time.Date(2026, time.March, 12, 8, 30, 0, 0, time.UTC)
	return entry
}

func TestFrenchDate(t *testing.T) {
	got := frenchDate(time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC))
	if got != "2 août 2026" {
		t.Errorf("frenchDate = %q, want %q", got, "2 août 2026")
	}
}

func TestExportTitle(t *testing.T) {
	if got := exportTitle(testEntry()); got != "Cauchemar du 12 mars 2026" {
		t.Errorf("title = %q, want %q", got, "Cauchemar du 12 mars 2026")
	}
}

func TestBuildExportBodySectionOrder(t *testing.T) {
	body := buildExportBody(testEntry())

	sections := []string{
		"## Récit",
		"## Freudien",
		"## Symbolique",
		"## Cognitivo-scientifique",
		"## Émotionnelle",
		"## Illustration",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(body, section)
		if idx < 0 {
			t.Fatalf("body is missing section %q:\n%s", section, body)
		}
		if idx < last {
			t.Errorf("section %q is out of order", section)
		}
		last = idx
	}

	if !strings.Contains(body, "![Illustration du rêve](/media/dreams/2026/03/x.png)") {
		t.Errorf("body is missing the image link:\n%s", body)
	}
}

func TestBuildExportBodyWithoutImage(t *testing.T) {
	entry := testEntry()
	entry.ImagePath = ""

	body := buildExportBody(entry)
	if strings.Contains(body, "## Illustration") {
		t.Error("body should not have an illustration section without an image")
	}
}

func TestBuildExportMeta(t *testing.T) {
	meta := buildExportMeta(testEntry())

	if meta["dream_type"] != "cauchemar" {
		t.Errorf("dream_type = %v, want cauchemar", meta["dream_type"])
	}
	if meta["dominant_emotion"] != "apeure" {
		t.Errorf("dominant_emotion = %v, want apeure", meta["dominant_emotion"])
	}
	if meta["image"] != "/media/dreams/2026/03/x.png" {
		t.Errorf("image = %v", meta["image"])
	}

	entry := testEntry()
	entry.DominantEmotion = ""
	entry.ImagePath = ""
	meta = buildExportMeta(entry)
	if _, ok := meta["dominant_emotion"]; ok {
		t.Error("dominant_emotion should be omitted when unset")
	}
	if _, ok := meta["image"]; ok {
		t.Error("image should be omitted when unset")
	}
}
