package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/storage"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewUnauthorized = errors.New("user has not purchased this product")
	ErrDuplicateReview    = errors.New("user already reviewed this product")
	ErrDuplicateComment   = errors.New("user already commented on this product")
	ErrCommentForbidden   = errors.New("user does not own the product")
	ErrReviewNotFound     = errors.New("review not found")
	ErrMissingContent     = errors.New("review content is empty")
)

const recentReviewLimit = 10

// ReviewComment 후기에 달린 판매자 댓글
type ReviewComment struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewThread 후기 한 건과 그 밑의 댓글 (있다면 하나)
type ReviewThread struct {
	ID           uint           `json:"id"`
	UserID       uint           `json:"user_id"`
	UserName     string         `json:"user_name"`
	ProfileImage string         `json:"profile_image"`
	Grade        *int           `json:"grade"`
	ImageURL     *string        `json:"image_url"`
	Content      string         `json:"content"`
	CreatedAt    time.Time      `json:"created_at"`
	Comment      *ReviewComment `json:"comment"`
}

// RecentReview 전체 피드 항목
type RecentReview struct {
	ID          uint      `json:"id"`
	UserName    string    `json:"user_name"`
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name"`
	Grade       *int      `json:"grade"`
	ImageURL    *string   `json:"image_url"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReviewService interface {
	PostReview(ctx context.Context, authorID, productID uint, content string, grade *int, image *ImageUpload) (*model.Review, error)
	PostComment(authorID, productID, reviewID uint, content string) (*model.Review, error)
	GetComments(productID uint) ([]ReviewThread, error)
	RecentReviews() ([]RecentReview, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	store       storage.ObjectStorage
	db          *gorm.DB
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	store storage.ObjectStorage,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		store:       store,
		db:          db,
	}
}

// buildReviewThreads resolves the two-level thread for a product: top-level
// reviews newest first, each carrying at most one nested comment.
func buildReviewThreads(reviewRepo repository.ReviewRepository, productID uint) ([]ReviewThread, error) {
	reviews, err := reviewRepo.FindTopLevelByProduct(productID)
	if err != nil {
		return nil, err
	}

	threads := make([]ReviewThread, 0, len(reviews))
	for _, review := range reviews {
		thread := ReviewThread{
			ID:           review.ID,
			UserID:       review.UserID,
			UserName:     review.User.Name,
			ProfileImage: review.User.ProfileImage,
			Grade:        review.Grade,
			ImageURL:     review.ImageURL,
			Content:      review.Content,
			CreatedAt:    review.CreatedAt,
		}

		comments, err := reviewRepo.FindCommentsByParent(review.ID)
		if err != nil {
			return nil, err
		}
		if len(comments) > 0 {
			c := comments[0]
			thread.Comment = &ReviewComment{
				ID:        c.ID,
				UserID:    c.UserID,
				UserName:  c.User.Name,
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
			}
		}

		threads = append(threads, thread)
	}
	return threads, nil
}

// PostReview creates a top-level review. The author must have an order for
// the product and may only review it once. The attached image follows the
// same placeholder-then-finalize contract as product uploads.
func (s *reviewService) PostReview(ctx context.Context, authorID, productID uint, content string, grade *int, image *ImageUpload) (*model.Review, error) {
	if image == nil {
		return nil, ErrNoImages
	}
	if content == "" {
		return nil, ErrMissingContent
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	purchased, err := s.orderRepo.ExistsByUserAndProduct(authorID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		logger.Warn("Rejecting review: no purchase history", map[string]interface{}{
			"user_id":    authorID,
			"product_id": productID,
		})
		return nil, ErrReviewUnauthorized
	}

	reviewed, err := s.reviewRepo.HasTopLevelByUser(authorID, productID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		logger.Warn("Rejecting review: already reviewed", map[string]interface{}{
			"user_id":    authorID,
			"product_id": productID,
		})
		return nil, ErrDuplicateReview
	}

	key := uuid.New().String() + filepath.Ext(image.Filename)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during review creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": authorID,
			})
		}
	}()

	review := &model.Review{
		UserID:    authorID,
		ProductID: productID,
		Content:   content,
		Grade:     grade,
		ImageUUID: &key,
	}
	if err := tx.Create(review).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create review row", err, map[string]interface{}{
			"user_id":    authorID,
			"product_id": productID,
		})
		return nil, err
	}

	url, err := s.store.Put(ctx, key, image.Body, image.ContentType)
	if err != nil {
		tx.Rollback()
		logger.Error("Failed to upload review image to object storage", err, map[string]interface{}{
			"user_id": authorID,
			"key":     key,
		})
		return nil, err
	}

	if err := tx.Model(&model.Review{}).
		Where("id = ?", review.ID).
		Update("image_url", url).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to finalize review image URL", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit review", err, map[string]interface{}{
			"user_id": authorID,
		})
		return nil, err
	}
	review.ImageURL = &url

	logger.Info("Review posted", map[string]interface{}{
		"review_id":  review.ID,
		"user_id":    authorID,
		"product_id": productID,
	})
	return review, nil
}

// PostComment creates a seller reply under an existing review. The duplicate
// check runs again inside the transaction so two concurrent posts cannot
// both slip past it.
func (s *reviewService) PostComment(authorID, productID, reviewID uint, content string) (*model.Review, error) {
	if content == "" {
		return nil, ErrMissingContent
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.UserID != authorID {
		logger.Warn("Rejecting comment: user does not own product", map[string]interface{}{
			"user_id":    authorID,
			"product_id": productID,
		})
		return nil, ErrCommentForbidden
	}

	hasReview, err := s.reviewRepo.HasTopLevel(productID)
	if err != nil {
		return nil, err
	}
	if !hasReview {
		return nil, ErrReviewNotFound
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during comment creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": authorID,
			})
		}
	}()

	var count int64
	if err := tx.Model(&model.Review{}).
		Where("user_id = ? AND product_id = ? AND comment_id IS NOT NULL", authorID, productID).
		Count(&count).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		logger.Warn("Rejecting comment: already commented", map[string]interface{}{
			"user_id":    authorID,
			"product_id": productID,
		})
		return nil, ErrDuplicateComment
	}

	comment := &model.Review{
		UserID:    authorID,
		ProductID: productID,
		Content:   content,
		CommentID: &reviewID,
	}
	if err := tx.Create(comment).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create comment row", err, map[string]interface{}{
			"user_id":   authorID,
			"review_id": reviewID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit comment", err, map[string]interface{}{
			"user_id": authorID,
		})
		return nil, err
	}

	logger.Info("Comment posted", map[string]interface{}{
		"comment_id": comment.ID,
		"review_id":  reviewID,
		"user_id":    authorID,
	})
	return comment, nil
}

func (s *reviewService) GetComments(productID uint) ([]ReviewThread, error) {
	return buildReviewThreads(s.reviewRepo, productID)
}

func (s *reviewService) RecentReviews() ([]RecentReview, error) {
	reviews, err := s.reviewRepo.FindRecent(recentReviewLimit)
	if err != nil {
		return nil, err
	}

	feed := make([]RecentReview, 0, len(reviews))
	for _, review := range reviews {
		feed = append(feed, RecentReview{
			ID:          review.ID,
			UserName:    review.User.Name,
			ProductID:   review.ProductID,
			ProductName: review.Product.Name,
			Grade:       review.Grade,
			ImageURL:    review.ImageURL,
			Content:     review.Content,
			CreatedAt:   review.CreatedAt,
		})
	}
	return feed, nil
}
