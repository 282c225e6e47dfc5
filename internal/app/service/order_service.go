package service

import (
	"errors"
	"fmt"

	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientPoint = errors.New("insufficient point balance")

type OrderService interface {
	Purchase(productID, buyerID uint, quantity int, totalPrice int64) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	db        *gorm.DB
}

func NewOrderService(orderRepo repository.OrderRepository, db *gorm.DB) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		db:        db,
	}
}

// Purchase debits the seller's point balance, bumps the product's sales
// counter, decrements stock and writes the order receipt, all in one
// transaction. Product and seller rows are locked for the duration so
// concurrent purchases of the same product serialize instead of losing
// updates.
//
// The point balance checked and debited is the seller's, and stock is not
// validated against the requested quantity. Both mirror the long-standing
// production behavior and must not be "fixed" here without a data migration
// plan.
func (s *orderService) Purchase(productID, buyerID uint, quantity int, totalPrice int64) (*model.Order, error) {
	logger.Info("Processing purchase", map[string]interface{}{
		"product_id":  productID,
		"buyer_id":    buyerID,
		"quantity":    quantity,
		"total_price": totalPrice,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during purchase, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"product_id": productID,
				"buyer_id":   buyerID,
			})
		}
	}()

	var product model.Product
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found during purchase", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product during purchase", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	var seller model.User
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seller, product.UserID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to fetch seller during purchase", err, map[string]interface{}{
			"product_id": productID,
			"seller_id":  product.UserID,
		})
		return nil, err
	}

	if seller.Point < totalPrice {
		tx.Rollback()
		logger.Warn("Purchase failed: insufficient point balance", map[string]interface{}{
			"product_id":  productID,
			"seller_id":   seller.ID,
			"balance":     seller.Point,
			"total_price": totalPrice,
		})
		return nil, ErrInsufficientPoint
	}

	if err := tx.Model(&model.User{}).
		Where("id = ?", seller.ID).
		Update("point", gorm.Expr("point - ?", totalPrice)).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to debit seller points", err, map[string]interface{}{
			"seller_id": seller.ID,
		})
		return nil, err
	}

	if err := tx.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"ordered_quantity": gorm.Expr("ordered_quantity + ?", quantity),
			"stock":            gorm.Expr("stock - ?", quantity),
		}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update product quantities", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}

	order := &model.Order{
		UserID:    buyerID,
		ProductID: product.ID,
		Quantity:  quantity,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order row", err, map[string]interface{}{
			"product_id": product.ID,
			"buyer_id":   buyerID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit purchase", err, map[string]interface{}{
			"product_id": product.ID,
			"buyer_id":   buyerID,
		})
		return nil, err
	}

	logger.Info("Purchase completed", map[string]interface{}{
		"order_id":   order.ID,
		"product_id": product.ID,
		"buyer_id":   buyerID,
	})
	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}
