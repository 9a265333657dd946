package models

import "time"

// UserModel represents a dream-diary account. Login is by email.
type UserModel struct {
	Base
	Email         string     `json:"email"           gorm:"uniqueIndex;not null"`
	Username      string     `json:"username"        gorm:"index;not null"`
	Password      string     `json:"-"               gorm:"not null"`
	Age           *int       `json:"age"`
	Gender        string     `json:"gender"          gorm:"type:char(1)"` // M | F | O | N
	Bio           string     `json:"bio"             gorm:"size:180"`
	Avatar        string     `json:"avatar"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
	APITokens     []APIToken `json:"api_tokens,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

// APIToken represents a personal API token for programmatic access.
type APIToken struct {
	Base
	UserID    string     `json:"-"          gorm:"index;not null"`
	Token     string     `json:"token"      gorm:"uniqueIndex;not null"`
	Name      string     `json:"name"`
	ExpiredAt *time.Time `json:"expired_at"`
}

func (APIToken) TableName() string { return "api_tokens" }
