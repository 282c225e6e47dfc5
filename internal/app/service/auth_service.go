package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/pkg/kakao"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"github.com/sunhobaek/freshmarket-backend/pkg/redis"
	"github.com/sunhobaek/freshmarket-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidKakaoToken = errors.New("invalid kakao access token")
	ErrUserNotFound      = errors.New("user not found")
)

// KakaoUserProvider resolves a Kakao access token to account info.
type KakaoUserProvider interface {
	GetUserInfo(ctx context.Context, accessToken string) (*kakao.UserInfo, error)
}

type AuthService interface {
	KakaoLogin(ctx context.Context, accessToken string) (user *model.User, token string, created bool, err error)
	Logout(ctx context.Context, token string, claims *util.Claims) error
}

type authService struct {
	userRepo  repository.UserRepository
	kakao     KakaoUserProvider
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, kakaoClient KakaoUserProvider, jwtSecret string, jwtExpiry time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		kakao:     kakaoClient,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// KakaoLogin resolves the Kakao token, creates the local account on first
// login and issues a service JWT. created reports whether a new account
// was made on this call.
func (s *authService) KakaoLogin(ctx context.Context, accessToken string) (*model.User, string, bool, error) {
	info, err := s.kakao.GetUserInfo(ctx, accessToken)
	if err != nil {
		logger.Warn("Kakao token validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, "", false, ErrInvalidKakaoToken
	}

	kakaoAccount := strconv.FormatInt(info.ID, 10)
	created := false

	user, err := s.userRepo.FindByKakaoAccount(kakaoAccount)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to look up user by kakao account", err, map[string]interface{}{
				"kakao_account": kakaoAccount,
			})
			return nil, "", false, err
		}

		user = &model.User{
			KakaoAccount: kakaoAccount,
			Name:         info.KakaoAccount.Profile.Nickname,
			ProfileImage: info.KakaoAccount.Profile.ProfileImageURL,
			Email:        info.KakaoAccount.Email,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, "", false, err
		}
		created = true

		logger.Info("New user registered via kakao", map[string]interface{}{
			"user_id": user.ID,
		})
	}

	token, err := util.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", false, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"created": created,
	})
	return user, token, created, nil
}

// Logout blacklists the token until its natural expiry so it cannot be
// replayed. A no-op when the blacklist store is not configured.
func (s *authService) Logout(ctx context.Context, token string, claims *util.Claims) error {
	ttl := s.jwtExpiry
	var userID uint
	if claims != nil {
		userID = claims.UserID
		if claims.ExpiresAt != nil {
			ttl = time.Until(claims.ExpiresAt.Time)
		}
	}
	if ttl <= 0 {
		return nil
	}

	if err := redis.BlacklistToken(ctx, token, ttl); err != nil {
		logger.Error("Failed to blacklist token", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
