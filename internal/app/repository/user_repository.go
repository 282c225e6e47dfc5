package repository

import (
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByKakaoAccount(kakaoAccount string) (*model.User, error)
	SearchByName(keyword string) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"kakao_account": user.KakaoAccount,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"kakao_account": user.KakaoAccount,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id":       user.ID,
		"kakao_account": user.KakaoAccount,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Debug("Failed to find user by ID in database", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByKakaoAccount(kakaoAccount string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("kakao_account = ?", kakaoAccount).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchByName 이름 부분 일치 검색 (대소문자 무시)
func (r *userRepository) SearchByName(keyword string) ([]model.User, error) {
	logger.Debug("Searching users by name in database", map[string]interface{}{
		"keyword": keyword,
	})

	var users []model.User
	like := "%" + keyword + "%"
	if err := r.db.Where("LOWER(name) LIKE LOWER(?)", like).
		Order("id ASC").
		Find(&users).Error; err != nil {
		logger.Error("Failed to search users by name in database", err, map[string]interface{}{
			"keyword": keyword,
		})
		return nil, err
	}

	logger.Debug("Users found by name in database", map[string]interface{}{
		"keyword": keyword,
		"count":   len(users),
	})
	return users, nil
}
