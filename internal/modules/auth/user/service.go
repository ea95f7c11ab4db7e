package user

import (
	"errors"

	"github.com/sitesmith/core/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Get(userID string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Update(userID string, dto *UpdateDTO) (*models.UserModel, error) {
	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Mail != nil {
		updates["mail"] = *dto.Mail
	}
	if dto.Avatar != nil {
		updates["avatar"] = *dto.Avatar
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.UserModel{}).
			Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(userID)
}

func (s *Service) ChangePassword(userID, oldPassword, newPassword string) error {
	var u models.UserModel
	if err := s.db.Select("id, password").Where("id = ?", userID).First(&u).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)); err != nil {
		return errWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&models.UserModel{}).
		Where("id = ?", userID).Update("password", string(hash)).Error
}

var errWrongPassword = errors.New("wrong password")
