package repository

import (
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	FindTopLevelByProduct(productID uint) ([]model.Review, error)
	FindCommentsByParent(parentID uint) ([]model.Review, error)
	HasTopLevel(productID uint) (bool, error)
	HasTopLevelByUser(userID, productID uint) (bool, error)
	FindRecent(limit int) ([]model.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// FindTopLevelByProduct 상품의 후기 목록 (댓글 제외, 최신순)
func (r *reviewRepository) FindTopLevelByProduct(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.
		Preload("User").
		Where("product_id = ? AND comment_id IS NULL", productID).
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to find reviews by product in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) FindCommentsByParent(parentID uint) ([]model.Review, error) {
	var comments []model.Review
	err := r.db.
		Preload("User").
		Where("comment_id = ?", parentID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		logger.Error("Failed to find comments by parent review in database", err, map[string]interface{}{
			"review_id": parentID,
		})
		return nil, err
	}
	return comments, nil
}

// HasTopLevel 상품에 후기가 하나라도 있는지 (댓글 작성 전제 조건)
func (r *reviewRepository) HasTopLevel(productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("product_id = ? AND comment_id IS NULL", productID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check review existence in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

// HasTopLevelByUser 같은 상품에 이미 후기를 남겼는지
func (r *reviewRepository) HasTopLevelByUser(userID, productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("user_id = ? AND product_id = ? AND comment_id IS NULL", userID, productID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check review existence in database", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *reviewRepository) FindRecent(limit int) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.
		Preload("User").
		Preload("Product").
		Where("comment_id IS NULL").
		Order("id DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to find recent reviews in database", err)
		return nil, err
	}
	return reviews, nil
}
