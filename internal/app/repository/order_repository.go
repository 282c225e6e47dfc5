package repository

import (
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	ExistsByUserAndProduct(userID, productID uint) (bool, error)
	FindByUserID(userID uint) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// ExistsByUserAndProduct 구매 이력 여부: 리뷰 작성 자격 검사에 쓰인다.
func (r *orderRepository) ExistsByUserAndProduct(userID, productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Order{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check order existence in database", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}
