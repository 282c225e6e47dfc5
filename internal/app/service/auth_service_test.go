package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/db"
	"github.com/sunhobaek/freshmarket-backend/pkg/kakao"
	"github.com/sunhobaek/freshmarket-backend/pkg/util"
	"gorm.io/gorm"
)

type fakeKakao struct {
	info *kakao.UserInfo
	err  error
}

func (f *fakeKakao) GetUserInfo(ctx context.Context, accessToken string) (*kakao.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func setupAuthServiceTest(t *testing.T, provider KakaoUserProvider) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, provider, "test-secret", time.Hour)
	return authService, testDB
}

func kakaoInfo(id int64, nickname string) *kakao.UserInfo {
	info := &kakao.UserInfo{ID: id}
	info.KakaoAccount.Email = "user@example.com"
	info.KakaoAccount.Profile.Nickname = nickname
	return info
}

func TestAuthService_KakaoLogin_CreatesUserOnFirstLogin(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t, &fakeKakao{info: kakaoInfo(12345, "신규회원")})

	user, token, created, err := authService.KakaoLogin(context.Background(), "kakao-token")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, token)
	assert.Equal(t, "12345", user.KakaoAccount)
	assert.Equal(t, "신규회원", user.Name)

	// The issued token must resolve back to the stored user
	claims, err := util.ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	var count int64
	testDB.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_KakaoLogin_ReturnsExistingUser(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t, &fakeKakao{info: kakaoInfo(12345, "기존회원")})

	first, _, created, err := authService.KakaoLogin(context.Background(), "kakao-token")
	require.NoError(t, err)
	require.True(t, created)

	second, _, created, err := authService.KakaoLogin(context.Background(), "kakao-token")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	testDB.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAuthService_KakaoLogin_InvalidToken(t *testing.T) {
	authService, _ := setupAuthServiceTest(t, &fakeKakao{err: kakao.ErrInvalidToken})

	user, token, created, err := authService.KakaoLogin(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidKakaoToken)
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.False(t, created)
}

func TestAuthService_Logout_NoBlacklistStoreConfigured(t *testing.T) {
	authService, _ := setupAuthServiceTest(t, &fakeKakao{info: kakaoInfo(1, "회원")})

	_, token, _, err := authService.KakaoLogin(context.Background(), "kakao-token")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token, "test-secret")
	require.NoError(t, err)

	// Without redis the logout is a no-op, not an error
	assert.NoError(t, authService.Logout(context.Background(), token, claims))
}
