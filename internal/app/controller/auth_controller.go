package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunhobaek/freshmarket-backend/internal/app/service"
	apperrors "github.com/sunhobaek/freshmarket-backend/internal/errors"
	"github.com/sunhobaek/freshmarket-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// KakaoLogin exchanges a Kakao access token for a service token,
// registering the user on first login.
// GET /api/v1/users/login/kakao
func (ctrl *AuthController) KakaoLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	accessToken := c.GetHeader("Authorization")
	if accessToken == "" {
		log.Warn("Missing kakao access token header", nil)
		apperrors.BadRequest(c, apperrors.MsgKeyError)
		return
	}
	accessToken = strings.TrimPrefix(accessToken, "Bearer ")

	user, token, created, err := ctrl.authService.KakaoLogin(c.Request.Context(), accessToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidKakaoToken) {
			apperrors.Unauthorized(c, apperrors.MsgInvalidToken)
			return
		}
		log.Error("Kakao login failed", err, nil)
		apperrors.InternalError(c)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"MESSAGE":   apperrors.MsgSuccess,
		"user_name": user.Name,
		"TOKEN":     token,
	})
}

// Logout revokes the presented token for the rest of its lifetime.
// POST /api/v1/users/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, _ := middleware.GetToken(c)
	claims, _ := middleware.GetClaims(c)

	if err := ctrl.authService.Logout(c.Request.Context(), token, claims); err != nil {
		log.Error("Logout failed", err, nil)
		apperrors.InternalError(c)
		return
	}

	apperrors.Respond(c, http.StatusOK, apperrors.MsgSuccess)
}
