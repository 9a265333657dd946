package storage

import (
	"testing"

	appcfg "github.com/onyria-app/core/internal/config"
)

func TestNewS3UploaderRequiresCredentials(t *testing.T) {
	if _, err := NewS3Uploader(appcfg.S3Options{Bucket: "onyria"}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestPublicURL(t *testing.T) {
	base := appcfg.S3Options{
		Bucket:          "onyria-media",
		Region:          "eu-west-3",
		AccessKeyID:     "AK",
		SecretAccessKey: "SK",
	}

	u, err := NewS3Uploader(base)
	if err != nil {
		t.Fatalf("NewS3Uploader: %v", err)
	}
	if got := u.PublicURL("dreams/2026/08/a.png"); got != "https://onyria-media.s3.eu-west-3.amazonaws.com/dreams/2026/08/a.png" {
		t.Fatalf("aws url: %q", got)
	}

	withDomain := base
	withDomain.CustomDomain = "https://cdn.onyria.app/"
	u, err = NewS3Uploader(withDomain)
	if err != nil {
		t.Fatalf("NewS3Uploader: %v", err)
	}
	if got := u.PublicURL("/dreams/a.png"); got != "https://cdn.onyria.app/dreams/a.png" {
		t.Fatalf("custom domain url: %q", got)
	}

	withEndpoint := base
	withEndpoint.Endpoint = "minio.local:9000"
	u, err = NewS3Uploader(withEndpoint)
	if err != nil {
		t.Fatalf("NewS3Uploader: %v", err)
	}
	// Custom endpoints default to path-style addressing.
	if got := u.PublicURL("dreams/a.png"); got != "https://minio.local:9000/onyria-media/dreams/a.png" {
		t.Fatalf("path-style url: %q", got)
	}
}

func TestObjectKeyPrefix(t *testing.T) {
	opts := appcfg.S3Options{
		Bucket:          "onyria-media",
		Region:          "eu-west-3",
		AccessKeyID:     "AK",
		SecretAccessKey: "SK",
		Prefix:          "/uploads/",
	}
	u, err := NewS3Uploader(opts)
	if err != nil {
		t.Fatalf("NewS3Uploader: %v", err)
	}
	if got := u.objectKey("dreams//a.png"); got != "uploads/dreams/a.png" {
		t.Fatalf("object key: %q", got)
	}
	if got := u.objectKey("  "); got != "" {
		t.Fatalf("blank key should stay blank, got %q", got)
	}
}
