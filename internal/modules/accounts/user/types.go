package user

import (
	"errors"
	"time"
)

type RegisterDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=2,max=40"`
	Password string `json:"password" binding:"required,min=8"`
	Age      *int   `json:"age" binding:"omitempty,gte=13,lte=120"`
	Gender   string `json:"gender" binding:"omitempty,oneof=M F O N"`
	Bio      string `json:"bio" binding:"omitempty,max=180"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserDTO struct {
	Username *string `json:"username"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type DeleteAccountDTO struct {
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	Age           *int       `json:"age"`
	Gender        string     `json:"gender"`
	Bio           string     `json:"bio"`
	Avatar        string     `json:"avatar"`
	Created       time.Time  `json:"created"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user,omitempty"`
}

var (
	errUserNotFound      = errors.New("user not found")
	errEmailTaken        = errors.New("email already registered")
	errWrongPassword     = errors.New("wrong password")
	errPasswordSameAsOld = errors.New("password same as old")
)
