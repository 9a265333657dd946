package user

import (
	"testing"

	"github.com/onyria-app/core/internal/models"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  Reveuse@Example.COM ": "reveuse@example.com",
		"simple@onyria.app":      "simple@onyria.app",
	}
	for in, want := range cases {
		if got := normalizeEmail(in); got != want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidGender(t *testing.T) {
	for _, g := range []string{"M", "F", "O", "N"} {
		if !isValidGender(g) {
			t.Errorf("isValidGender(%q) = false, want true", g)
		}
	}
	for _, g := range []string{"", "X", "m", "female"} {
		if isValidGender(g) {
			t.Errorf("isValidGender(%q) = true, want false", g)
		}
	}
}

func TestToResponseOmitsPassword(t *testing.T) {
	age := 29
	u := &models.UserModel{
		Email:    "reveuse@example.com",
		Username: "rêveuse",
		Password: "$2a$10$hash",
		Age:      &age,
		Gender:   "F",
		Bio:      "Je note mes rêves.",
	}
	u.ID = "u-1"

	res := toResponse(u)
	if res.Email != u.Email || res.Username != u.Username || res.Age == nil || *res.Age != 29 {
		t.Errorf("toResponse lost fields: %+v", res)
	}
}
