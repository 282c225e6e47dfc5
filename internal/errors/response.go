package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageResponse 표준 응답 구조: {"MESSAGE": <code>}
type MessageResponse struct {
	Message string `json:"MESSAGE"`
}

// Respond MESSAGE 코드 응답 헬퍼
func Respond(c *gin.Context, statusCode int, code string) {
	c.JSON(statusCode, MessageResponse{Message: code})
}

// 자주 사용하는 응답 단축 함수들

func BadRequest(c *gin.Context, code string) {
	Respond(c, http.StatusBadRequest, code)
}

func Unauthorized(c *gin.Context, code string) {
	Respond(c, http.StatusUnauthorized, code)
}

func NotFound(c *gin.Context, code string) {
	Respond(c, http.StatusNotFound, code)
}

func InternalError(c *gin.Context) {
	Respond(c, http.StatusInternalServerError, MsgInternalServerError)
}
