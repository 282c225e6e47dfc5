package repository

import (
	"time"

	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductOrderBy string

const (
	ProductOrderByDefault ProductOrderBy = ""
	ProductOrderByID      ProductOrderBy = "id"
	ProductOrderByOrder   ProductOrderBy = "order"
)

// Valid reports whether the order-by value is one the catalog accepts.
func (o ProductOrderBy) Valid() bool {
	return o == ProductOrderByDefault || o == ProductOrderByID || o == ProductOrderByOrder
}

// ProductListItem 썸네일이 확정된 상품의 목록용 행.
// 썸네일 이미지가 없는 상품은 목록 질의에서 제외된다.
type ProductListItem struct {
	ID              uint    `json:"id"`
	UserID          uint    `json:"user_id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Stock           int     `json:"stock"`
	OrderedQuantity int     `json:"ordered_quantity"`
	Thumbnail       string  `json:"thumbnail"`
	OriginName      *string `json:"origin_name"`
	StorageName     *string `json:"storage_name"`
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) error
	FindByID(id uint) (*model.Product, error)
	FindByIDAndOwner(id, ownerID uint) (*model.Product, error)
	SearchByName(keyword string) ([]ProductListItem, error)
	FindSellers(category string, orderBy ProductOrderBy) ([]model.User, error)
	FindBySeller(sellerID uint, category string) ([]ProductListItem, error)
	ListTop(category string, orderBy ProductOrderBy, limit int) ([]ProductListItem, error)
	CountCreatedOn(ownerID uint, day time.Time) (int64, error)
	DeleteWithImages(productID uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":    product.Name,
		"user_id": product.UserID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":    product.Name,
			"user_id": product.UserID,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

// BulkCreate inserts products in batches, used by the xlsx import tool.
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Info("Bulk creating products in database", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products in database", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("User").
		Preload("Origin").
		Preload("Storage").
		Preload("Images").
		First(&product, id).Error
	if err != nil {
		logger.Debug("Failed to find product by ID in database", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDAndOwner(id, ownerID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Images").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// thumbnailQuery 대표 이미지가 업로드 완료된 상품만 내놓는 목록 기본 질의
func (r *productRepository) thumbnailQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).
		Select(`products.id, products.user_id, products.name, products.price, products.stock,
			products.ordered_quantity, images.url AS thumbnail,
			origins.name AS origin_name, storages.name AS storage_name`).
		Joins("JOIN images ON images.product_id = products.id AND images.is_thumbnail = ? AND images.url IS NOT NULL", true).
		Joins("LEFT JOIN origins ON origins.id = products.origin_id").
		Joins("LEFT JOIN storages ON storages.id = products.storage_id")
}

func categoryFilter(query *gorm.DB, category string) *gorm.DB {
	if category == "" {
		return query
	}
	return query.Where("origins.name = ? OR storages.name = ?", category, category)
}

func (r *productRepository) SearchByName(keyword string) ([]ProductListItem, error) {
	logger.Debug("Searching products by name in database", map[string]interface{}{
		"keyword": keyword,
	})

	var items []ProductListItem
	like := "%" + keyword + "%"
	if err := r.thumbnailQuery().
		Where("LOWER(products.name) LIKE LOWER(?)", like).
		Order("products.id ASC").
		Scan(&items).Error; err != nil {
		logger.Error("Failed to search products by name in database", err, map[string]interface{}{
			"keyword": keyword,
		})
		return nil, err
	}

	logger.Debug("Products found by name in database", map[string]interface{}{
		"keyword": keyword,
		"count":   len(items),
	})
	return items, nil
}

func (r *productRepository) FindSellers(category string, orderBy ProductOrderBy) ([]model.User, error) {
	logger.Debug("Finding sellers in database", map[string]interface{}{
		"category": category,
		"order_by": orderBy,
	})

	query := r.db.Model(&model.User{}).
		Select("users.*").
		Joins("JOIN products ON products.user_id = users.id").
		Group("users.id")

	if category != "" {
		query = query.
			Joins("LEFT JOIN origins ON origins.id = products.origin_id").
			Joins("LEFT JOIN storages ON storages.id = products.storage_id")
		query = categoryFilter(query, category)
	}

	switch orderBy {
	case ProductOrderByID:
		query = query.Order("users.id DESC")
	case ProductOrderByOrder:
		query = query.Order("SUM(products.ordered_quantity) DESC")
	default:
		query = query.Order("users.id ASC")
	}

	var sellers []model.User
	if err := query.Find(&sellers).Error; err != nil {
		logger.Error("Failed to find sellers in database", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}

	logger.Debug("Sellers found in database", map[string]interface{}{
		"count": len(sellers),
	})
	return sellers, nil
}

func (r *productRepository) FindBySeller(sellerID uint, category string) ([]ProductListItem, error) {
	logger.Debug("Finding seller products in database", map[string]interface{}{
		"seller_id": sellerID,
		"category":  category,
	})

	query := categoryFilter(r.thumbnailQuery(), category).
		Where("products.user_id = ?", sellerID).
		Order("products.id ASC")

	var items []ProductListItem
	if err := query.Scan(&items).Error; err != nil {
		logger.Error("Failed to find seller products in database", err, map[string]interface{}{
			"seller_id": sellerID,
		})
		return nil, err
	}
	return items, nil
}

func (r *productRepository) ListTop(category string, orderBy ProductOrderBy, limit int) ([]ProductListItem, error) {
	logger.Debug("Listing top products in database", map[string]interface{}{
		"category": category,
		"order_by": orderBy,
		"limit":    limit,
	})

	query := categoryFilter(r.thumbnailQuery(), category)

	switch orderBy {
	case ProductOrderByOrder:
		query = query.Order("products.ordered_quantity DESC")
	default:
		query = query.Order("products.id DESC")
	}

	var items []ProductListItem
	if err := query.Limit(limit).Scan(&items).Error; err != nil {
		logger.Error("Failed to list top products in database", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}
	return items, nil
}

// CountCreatedOn 하루 등록 한도 검사용: 해당 날짜에 판매자가 만든 상품 수
func (r *productRepository) CountCreatedOn(ownerID uint, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int64
	err := r.db.Model(&model.Product{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", ownerID, start, end).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count products created today", err, map[string]interface{}{
			"user_id": ownerID,
		})
		return 0, err
	}
	return count, nil
}

// DeleteWithImages 상품과 그 이미지 행을 한 트랜잭션에서 삭제한다.
func (r *productRepository) DeleteWithImages(productID uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": productID,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.Image{}).Error; err != nil {
			logger.Error("Failed to delete product images from database", err, map[string]interface{}{
				"product_id": productID,
			})
			return err
		}
		if err := tx.Delete(&model.Product{}, productID).Error; err != nil {
			logger.Error("Failed to delete product from database", err, map[string]interface{}{
				"product_id": productID,
			})
			return err
		}
		return nil
	})
}
