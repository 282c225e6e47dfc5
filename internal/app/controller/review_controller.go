package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sunhobaek/freshmarket-backend/internal/app/service"
	apperrors "github.com/sunhobaek/freshmarket-backend/internal/errors"
	"github.com/sunhobaek/freshmarket-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// PostReview creates a top-level review with an attached image.
// POST /api/v1/reviews/:product_id
func (ctrl *ReviewController) PostReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, apperrors.MsgInvalidToken)
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.NotFound(c, apperrors.MsgNoItem)
		return
	}

	content := c.PostForm("content")

	var grade *int
	if v := c.PostForm("grade"); v != "" {
		if g, err := strconv.Atoi(v); err == nil {
			grade = &g
		}
	}

	var image *service.ImageUpload
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			log.Error("Failed to open uploaded file", err, map[string]interface{}{
				"filename": fh.Filename,
			})
			apperrors.InternalError(c)
			return
		}
		defer f.Close()
		image = &service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		}
	}

	_, err = ctrl.reviewService.PostReview(c.Request.Context(), userID, uint(productID), content, grade, image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingContent):
			apperrors.BadRequest(c, apperrors.MsgNoContent)
		case errors.Is(err, service.ErrNoImages):
			apperrors.NotFound(c, apperrors.MsgImageFilesNone)
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.MsgNoItem)
		case errors.Is(err, service.ErrReviewUnauthorized):
			apperrors.Unauthorized(c, apperrors.MsgUnauthorized)
		case errors.Is(err, service.ErrDuplicateReview):
			apperrors.BadRequest(c, apperrors.MsgAlreadyExistReview)
		default:
			log.Error("Review post failed", err, map[string]interface{}{
				"product_id": productID,
				"user_id":    userID,
			})
			apperrors.InternalError(c)
		}
		return
	}

	apperrors.Respond(c, http.StatusCreated, apperrors.MsgSuccess)
}

type postCommentRequest struct {
	ReviewID *uint   `json:"review_id"`
	Content  *string `json:"content"`
}

// PostComment creates a seller reply under a review.
// POST /api/v1/reviews/:product_id/comment
func (ctrl *ReviewController) PostComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, apperrors.MsgInvalidToken)
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.NotFound(c, apperrors.MsgNoItem)
		return
	}

	var req postCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReviewID == nil || req.Content == nil || *req.Content == "" {
		apperrors.BadRequest(c, apperrors.MsgKeyError)
		return
	}

	_, err = ctrl.reviewService.PostComment(userID, uint(productID), *req.ReviewID, *req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.MsgNoItem)
		case errors.Is(err, service.ErrCommentForbidden):
			apperrors.BadRequest(c, apperrors.MsgInvalidUser)
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.BadRequest(c, apperrors.MsgNotExistReview)
		case errors.Is(err, service.ErrDuplicateComment):
			apperrors.BadRequest(c, apperrors.MsgAlreadyExistComment)
		default:
			log.Error("Comment post failed", err, map[string]interface{}{
				"product_id": productID,
				"user_id":    userID,
			})
			apperrors.InternalError(c)
		}
		return
	}

	apperrors.Respond(c, http.StatusCreated, apperrors.MsgSuccess)
}

// GetComments returns the review thread for a product.
// GET /api/v1/reviews/:product_id/comment
func (ctrl *ReviewController) GetComments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.NotFound(c, apperrors.MsgNoItem)
		return
	}

	threads, err := ctrl.reviewService.GetComments(uint(productID))
	if err != nil {
		log.Error("Failed to fetch review thread", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"RESULT": threads})
}

// Recent returns the newest top-level reviews across all products.
// GET /api/v1/reviews/recent
func (ctrl *ReviewController) Recent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	feed, err := ctrl.reviewService.RecentReviews()
	if err != nil {
		log.Error("Failed to fetch recent reviews", err, nil)
		apperrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"RESULT": feed})
}
