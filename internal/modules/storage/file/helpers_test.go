package file

import (
	"strings"
	"testing"
)

func TestBuildFileName(t *testing.T) {
	name := buildFileName("Portrait de Rêveuse.PNG")
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("expected lower-cased extension, got %q", name)
	}
	if len(name) != 18+len(".png") {
		t.Errorf("unexpected name length: %q", name)
	}

	if got := buildFileName("noextension"); !strings.HasSuffix(got, ".dat") {
		t.Errorf("expected .dat fallback, got %q", got)
	}

	if buildFileName("a.png") == buildFileName("a.png") {
		t.Error("two generated names should not collide")
	}
}

func TestValidateAvatarFile(t *testing.T) {
	if err := validateAvatarFile("me.jpg", 1<<20, "jpg,jpeg,png", 5); err != nil {
		t.Errorf("valid avatar rejected: %v", err)
	}
	if err := validateAvatarFile("me.bmp", 1<<20, "jpg,jpeg,png", 5); err == nil {
		t.Error("disallowed format accepted")
	}
	if err := validateAvatarFile("me.jpg", 6<<20, "jpg", 5); err == nil {
		t.Error("oversized avatar accepted")
	}
	if err := validateAvatarFile("me", 1<<20, "jpg", 5); err == nil {
		t.Error("extensionless file accepted")
	}
	// Empty allow-list means every extension passes.
	if err := validateAvatarFile("me.webp", 1<<20, "", 5); err != nil {
		t.Errorf("empty allow-list should accept all, got %v", err)
	}
}

func TestSafeRelPath(t *testing.T) {
	valid := map[string]string{
		"dreams/2026/03/x.png":   "dreams/2026/03/x.png",
		"/avatars/a.png":         "avatars/a.png",
		"avatars\\win\\path.png": "avatars/win/path.png",
	}
	for in, want := range valid {
		got, ok := safeRelPath(in)
		if !ok || got != want {
			t.Errorf("safeRelPath(%q) = %q/%v, want %q", in, got, ok, want)
		}
	}

	for _, in := range []string{"", "../etc/passwd", "a/../b", "a//b", "a/b c.png"} {
		if _, ok := safeRelPath(in); ok {
			t.Errorf("safeRelPath(%q) accepted an unsafe path", in)
		}
	}
}

func TestMediaRelPath(t *testing.T) {
	if rel, ok := mediaRelPath("/media/dreams/2026/x.png"); !ok || rel != "dreams/2026/x.png" {
		t.Errorf("mediaRelPath = %q/%v", rel, ok)
	}
	if _, ok := mediaRelPath("https://bucket.s3.amazonaws.com/dreams/x.png"); ok {
		t.Error("S3 URL must not resolve to a local path")
	}
}

func TestDetectContentType(t *testing.T) {
	if got := detectContentType("a.png", nil, "image/png"); got != "image/png" {
		t.Errorf("fallback header ignored: %q", got)
	}
	if got := detectContentType("a.png", nil, ""); got != "image/png" {
		t.Errorf("extension sniffing failed: %q", got)
	}
	if got := detectContentType("", nil, ""); got != "application/octet-stream" {
		t.Errorf("default type = %q", got)
	}
}
