package service

import (
	"context"
	"errors"
	"fmt"
	"io"
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
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidOrderBy  = errors.New("invalid order by value")
	ErrNoImages        = errors.New("no image files attached")
	ErrRateLimited     = errors.New("daily product upload limit exceeded")
)

// maxDailyUploads 판매자가 하루에 등록할 수 있는 상품 수
const maxDailyUploads = 4

// ImageUpload carries one uploaded file into the media pipeline.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProductUploadInput 상품 등록 요청 필드
type ProductUploadInput struct {
	Name        string
	Price       float64
	Description string
	Stock       int
	OriginID    *uint
	StorageID   *uint
}

// SellerInfo 판매자 목록 항목
type SellerInfo struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
}

// SearchResult carries the two lists the search endpoint returns.
type SearchResult struct {
	Sellers []SellerInfo
	Items   []repository.ProductListItem
}

// ProductDetail 상품 상세 페이지 구성 요소
type ProductDetail struct {
	Product *model.Product
	Images  []string
	Reviews []ReviewThread
}

type ProductService interface {
	Search(keyword string) (*SearchResult, error)
	Sellers(category string, orderBy repository.ProductOrderBy) ([]SellerInfo, error)
	SellerProducts(sellerID uint, category string) ([]repository.ProductListItem, error)
	List(category string, orderBy repository.ProductOrderBy) ([]repository.ProductListItem, error)
	Detail(productID uint) (*ProductDetail, error)
	Upload(ctx context.Context, ownerID uint, input ProductUploadInput, images []ImageUpload) (*model.Product, error)
	Delete(ctx context.Context, ownerID, productID uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	reviewRepo  repository.ReviewRepository
	store       storage.ObjectStorage
	db          *gorm.DB
}

func NewProductService(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	store storage.ObjectStorage,
	db *gorm.DB,
) ProductService {
	return &productService{
		productRepo: productRepo,
		userRepo:    userRepo,
		reviewRepo:  reviewRepo,
		store:       store,
		db:          db,
	}
}

// Search returns sellers and thumbnailed products whose names contain the
// keyword. An empty keyword is not an error: both lists come back empty.
func (s *productService) Search(keyword string) (*SearchResult, error) {
	result := &SearchResult{
		Sellers: []SellerInfo{},
		Items:   []repository.ProductListItem{},
	}
	if keyword == "" {
		return result, nil
	}

	users, err := s.userRepo.SearchByName(keyword)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result.Sellers = append(result.Sellers, SellerInfo{
			ID:           u.ID,
			Name:         u.Name,
			ProfileImage: u.ProfileImage,
		})
	}

	items, err := s.productRepo.SearchByName(keyword)
	if err != nil {
		return nil, err
	}
	result.Items = append(result.Items, items...)

	return result, nil
}

func (s *productService) Sellers(category string, orderBy repository.ProductOrderBy) ([]SellerInfo, error) {
	if !orderBy.Valid() {
		logger.Warn("Rejecting seller list: invalid order by", map[string]interface{}{
			"order_by": orderBy,
		})
		return nil, ErrInvalidOrderBy
	}

	users, err := s.productRepo.FindSellers(category, orderBy)
	if err != nil {
		return nil, err
	}

	sellers := make([]SellerInfo, 0, len(users))
	for _, u := range users {
		sellers = append(sellers, SellerInfo{
			ID:           u.ID,
			Name:         u.Name,
			ProfileImage: u.ProfileImage,
		})
	}
	return sellers, nil
}

func (s *productService) SellerProducts(sellerID uint, category string) ([]repository.ProductListItem, error) {
	return s.productRepo.FindBySeller(sellerID, category)
}

func (s *productService) List(category string, orderBy repository.ProductOrderBy) ([]repository.ProductListItem, error) {
	if !orderBy.Valid() {
		return nil, ErrInvalidOrderBy
	}
	return s.productRepo.ListTop(category, orderBy, 10)
}

func (s *productService) Detail(productID uint) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	urls := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		if img.URL != nil {
			urls = append(urls, *img.URL)
		}
	}

	threads, err := buildReviewThreads(s.reviewRepo, productID)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{
		Product: product,
		Images:  urls,
		Reviews: threads,
	}, nil
}

// Upload creates the product and its images in one transaction. Image rows
// start as placeholders and are only finalized with a URL after the object
// store accepts the bytes, so a failed put rolls everything back and leaves
// no half-created product behind.
func (s *productService) Upload(ctx context.Context, ownerID uint, input ProductUploadInput, images []ImageUpload) (*model.Product, error) {
	logger.Info("Uploading product", map[string]interface{}{
		"user_id":     ownerID,
		"name":        input.Name,
		"image_count": len(images),
	})

	if len(images) == 0 {
		logger.Warn("Rejecting upload: no image files", map[string]interface{}{
			"user_id": ownerID,
		})
		return nil, ErrNoImages
	}

	count, err := s.productRepo.CountCreatedOn(ownerID, time.Now())
	if err != nil {
		return nil, err
	}
	if count >= maxDailyUploads {
		logger.Warn("Rejecting upload: daily limit exceeded", map[string]interface{}{
			"user_id": ownerID,
			"count":   count,
		})
		return nil, ErrRateLimited
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during product upload, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": ownerID,
			})
		}
	}()

	product := &model.Product{
		UserID:      ownerID,
		OriginID:    input.OriginID,
		StorageID:   input.StorageID,
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Stock:       input.Stock,
	}
	if err := tx.Create(product).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create product row", err, map[string]interface{}{
			"user_id": ownerID,
		})
		return nil, err
	}

	for i, upload := range images {
		key := uuid.New().String() + filepath.Ext(upload.Filename)

		image := &model.Image{
			ProductID:   product.ID,
			Title:       upload.Filename,
			IsThumbnail: i == 0,
			ImageUUID:   key,
		}
		if err := tx.Create(image).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to create image row", err, map[string]interface{}{
				"product_id": product.ID,
			})
			return nil, err
		}

		url, err := s.store.Put(ctx, key, upload.Body, upload.ContentType)
		if err != nil {
			tx.Rollback()
			logger.Error("Failed to upload image to object storage", err, map[string]interface{}{
				"product_id": product.ID,
				"key":        key,
			})
			return nil, err
		}

		if err := tx.Model(&model.Image{}).
			Where("id = ?", image.ID).
			Update("url", url).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to finalize image URL", err, map[string]interface{}{
				"image_id": image.ID,
			})
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit product upload", err, map[string]interface{}{
			"user_id": ownerID,
		})
		return nil, err
	}

	logger.Info("Product uploaded", map[string]interface{}{
		"product_id": product.ID,
		"user_id":    ownerID,
	})
	return product, nil
}

// Delete removes the product, its image rows and the backing objects.
// Remote deletes are best-effort: a storage failure is logged and the rows
// are removed anyway, leaving at worst an orphaned object.
func (s *productService) Delete(ctx context.Context, ownerID, productID uint) error {
	product, err := s.productRepo.FindByIDAndOwner(productID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot delete product: not found or not owned", map[string]interface{}{
				"product_id": productID,
				"user_id":    ownerID,
			})
			return ErrProductNotFound
		}
		return err
	}

	for _, img := range product.Images {
		if img.ImageUUID == "" {
			continue
		}
		if err := s.store.Delete(ctx, img.ImageUUID); err != nil {
			logger.Warn("Failed to delete object from storage", map[string]interface{}{
				"key":   img.ImageUUID,
				"error": err.Error(),
			})
		}
	}

	if err := s.productRepo.DeleteWithImages(productID); err != nil {
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": productID,
		"user_id":    ownerID,
	})
	return nil
}
