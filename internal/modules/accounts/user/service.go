// Package user manages dream-diary accounts: registration, email login,
// profile updates and account deletion.
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/onyria-app/core/internal/models"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
	sessionpkg "github.com/onyria-app/core/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	cfgSvc *configs.Service
}

func NewService(db *gorm.DB, cfgSvc *configs.Service) *Service {
	return &Service{db: db, cfgSvc: cfgSvc}
}

func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	email := normalizeEmail(dto.Email)

	var count int64
	if err := s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := models.UserModel{
		Email:    email,
		Username: strings.TrimSpace(dto.Username),
		Password: string(hash),
		Age:      dto.Age,
		Gender:   dto.Gender,
		Bio:      strings.TrimSpace(dto.Bio),
	}
	return &u, s.db.Create(&u).Error
}

// Login verifies the credentials and issues a session-bound token. A missing
// account gets the same delay as the original login flow to blunt probing.
func (s *Service) Login(email, password, ip, ua string) (string, *models.UserModel, error) {
	var u models.UserModel
	err := s.db.Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			time.Sleep(3 * time.Second)
			return "", nil, errUserNotFound
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errWrongPassword
	}

	now := time.Now()
	s.db.Model(&u).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	})
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, _, err := sessionpkg.Issue(s.db, u.ID, ip, ua, s.sessionTTL())
	return token, &u, err
}

func (s *Service) UpdateProfile(id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.GetByID(id)
	if err != nil || u == nil {
		return u, err
	}

	updates := map[string]interface{}{}
	if dto.Username != nil {
		name := strings.TrimSpace(*dto.Username)
		if name != "" {
			updates["username"] = name
			u.Username = name
		}
	}
	if dto.Age != nil {
		updates["age"] = *dto.Age
		u.Age = dto.Age
	}
	if dto.Gender != nil {
		gender := strings.ToUpper(strings.TrimSpace(*dto.Gender))
		if isValidGender(gender) {
			updates["gender"] = gender
			u.Gender = gender
		}
	}
	if dto.Bio != nil {
		updates["bio"] = strings.TrimSpace(*dto.Bio)
		u.Bio = strings.TrimSpace(*dto.Bio)
	}
	if dto.Avatar != nil {
		updates["avatar"] = *dto.Avatar
		u.Avatar = *dto.Avatar
	}
	if len(updates) == 0 {
		return u, nil
	}
	return u, s.db.Model(u).Updates(updates).Error
}

func (s *Service) ChangePassword(id, oldPwd, newPwd string) error {
	var u models.UserModel
	if err := s.db.Select("id, password").First(&u, "id = ?", id).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPwd)); err != nil {
		return errWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(newPwd)); err == nil {
		return errPasswordSameAsOld
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&u).Update("password", string(hash)).Error
}

// DeleteAccount verifies the password, revokes every session, soft-deletes
// the diary and finally the account itself. Stored files are flagged so the
// cleanup job removes them.
func (s *Service) DeleteAccount(id, password string) error {
	var u models.UserModel
	if err := s.db.Select("id, password").First(&u, "id = ?", id).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return errWrongPassword
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := sessionpkg.RevokeAllExcept(tx, id, ""); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.APIToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.DreamModel{}).Error; err != nil {
			return err
		}
		now := time.Now()
		if err := tx.Model(&models.FileReferenceModel{}).
			Where("user_id = ?", id).
			Update("deleted_by", &now).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UserModel{}, "id = ?", id).Error
	})
}

func (s *Service) sessionTTL() time.Duration {
	if s.cfgSvc == nil {
		return sessionpkg.DefaultTTL
	}
	cfg, err := s.cfgSvc.Get()
	if err != nil || cfg.AuthSecurity.SessionTTLHours <= 0 {
		return sessionpkg.DefaultTTL
	}
	return time.Duration(cfg.AuthSecurity.SessionTTLHours) * time.Hour
}
