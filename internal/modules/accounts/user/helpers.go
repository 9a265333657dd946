package user

import (
	"strings"

	"github.com/onyria-app/core/internal/models"
)

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func isValidGender(g string) bool {
	switch g {
	case "M", "F", "O", "N":
		return true
	default:
		return false
	}
}

func toResponse(u *models.UserModel) *userResponse {
	return &userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Age:           u.Age,
		Gender:        u.Gender,
		Bio:           u.Bio,
		Avatar:        u.Avatar,
		Created:       u.CreatedAt,
		LastLoginTime: u.LastLoginTime,
		LastLoginIP:   u.LastLoginIP,
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
