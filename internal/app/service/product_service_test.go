package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/db"
	"gorm.io/gorm"
)

// fakeStorage stands in for S3 in service tests.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return "", errors.New("storage unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB, *fakeStorage, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := newFakeStorage()
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	productService := NewProductService(productRepo, userRepo, reviewRepo, store, testDB)

	seller := &model.User{
		KakaoAccount: "2001",
		Name:         "바다수산",
		Point:        50000,
	}
	testDB.Create(seller)

	return productService, testDB, store, seller
}

func testUploads(names ...string) []ImageUpload {
	uploads := make([]ImageUpload, 0, len(names))
	for _, name := range names {
		uploads = append(uploads, ImageUpload{
			Filename:    name,
			ContentType: "image/jpeg",
			Body:        strings.NewReader("fake image bytes"),
		})
	}
	return uploads
}

// createThumbnailedProduct inserts a product with a finalized thumbnail row,
// bypassing the upload pipeline.
func createThumbnailedProduct(t *testing.T, testDB *gorm.DB, sellerID uint, name string, price float64, ordered int) *model.Product {
	t.Helper()

	product := &model.Product{
		UserID:          sellerID,
		Name:            name,
		Price:           price,
		Stock:           5,
		OrderedQuantity: ordered,
	}
	require.NoError(t, testDB.Create(product).Error)

	url := fmt.Sprintf("https://cdn.test/%s.jpg", name)
	image := &model.Image{
		ProductID:   product.ID,
		Title:       name + ".jpg",
		URL:         &url,
		IsThumbnail: true,
		ImageUUID:   name + "-key",
	}
	require.NoError(t, testDB.Create(image).Error)

	return product
}

func TestProductService_Upload_Success(t *testing.T) {
	productService, testDB, store, seller := setupProductServiceTest(t)

	product, err := productService.Upload(context.Background(), seller.ID, ProductUploadInput{
		Name:  "완도 전복 1kg",
		Price: 42000,
		Stock: 3,
	}, testUploads("front.jpg", "back.jpg"))
	require.NoError(t, err)
	assert.NotZero(t, product.ID)

	var images []model.Image
	testDB.Where("product_id = ?", product.ID).Order("id ASC").Find(&images)
	require.Len(t, images, 2)

	// First image is the thumbnail, every row is finalized with a URL
	assert.True(t, images[0].IsThumbnail)
	assert.False(t, images[1].IsThumbnail)
	for _, img := range images {
		require.NotNil(t, img.URL)
		assert.Contains(t, *img.URL, "https://cdn.test/")
		assert.NotEmpty(t, img.ImageUUID)
	}
	assert.Equal(t, "front.jpg", images[0].Title)
	assert.Len(t, store.objects, 2)
}

func TestProductService_Upload_NoImages(t *testing.T) {
	productService, testDB, _, seller := setupProductServiceTest(t)

	product, err := productService.Upload(context.Background(), seller.ID, ProductUploadInput{
		Name:  "상품",
		Price: 1000,
	}, nil)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Nil(t, product)

	var count int64
	testDB.Model(&model.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestProductService_Upload_StorageFailureRollsBack(t *testing.T) {
	productService, testDB, store, seller := setupProductServiceTest(t)
	store.failPut = true

	product, err := productService.Upload(context.Background(), seller.ID, ProductUploadInput{
		Name:  "상품",
		Price: 1000,
	}, testUploads("a.jpg"))
	require.Error(t, err)
	assert.Nil(t, product)

	// No product row and no half-finished image row may survive
	var productCount, imageCount int64
	testDB.Model(&model.Product{}).Count(&productCount)
	testDB.Model(&model.Image{}).Count(&imageCount)
	assert.Zero(t, productCount)
	assert.Zero(t, imageCount)
}

func TestProductService_Upload_DailyLimit(t *testing.T) {
	productService, _, _, seller := setupProductServiceTest(t)

	for i := 0; i < 4; i++ {
		_, err := productService.Upload(context.Background(), seller.ID, ProductUploadInput{
			Name:  fmt.Sprintf("상품 %d", i),
			Price: 1000,
		}, testUploads("a.jpg"))
		require.NoError(t, err, "upload %d should pass", i+1)
	}

	_, err := productService.Upload(context.Background(), seller.ID, ProductUploadInput{
		Name:  "다섯 번째 상품",
		Price: 1000,
	}, testUploads("a.jpg"))
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestProductService_Delete_RemovesRowsAndObjects(t *testing.T) {
	productService, testDB, store, seller := setupProductServiceTest(t)

	product, err := productService.Upload(context.Background(), seller.ID, ProductUploadInput{
		Name:  "삭제 대상",
		Price: 1000,
	}, testUploads("a.jpg", "b.jpg"))
	require.NoError(t, err)

	require.NoError(t, productService.Delete(context.Background(), seller.ID, product.ID))

	var productCount, imageCount int64
	testDB.Model(&model.Product{}).Count(&productCount)
	testDB.Model(&model.Image{}).Count(&imageCount)
	assert.Zero(t, productCount)
	assert.Zero(t, imageCount)
	assert.Len(t, store.deleted, 2)
}

func TestProductService_Delete_NotOwned(t *testing.T) {
	productService, testDB, _, seller := setupProductServiceTest(t)

	other := &model.User{KakaoAccount: "2002", Name: "다른 판매자"}
	testDB.Create(other)
	product := createThumbnailedProduct(t, testDB, other.ID, "남의 상품", 1000, 0)

	err := productService.Delete(context.Background(), seller.ID, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var count int64
	testDB.Model(&model.Product{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProductService_Search_EmptyKeyword(t *testing.T) {
	productService, _, _, _ := setupProductServiceTest(t)

	result, err := productService.Search("")
	require.NoError(t, err)
	assert.Empty(t, result.Sellers)
	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Sellers)
	assert.NotNil(t, result.Items)
}

func TestProductService_Search_MatchesNamesAndSkipsUnthumbnailed(t *testing.T) {
	productService, testDB, _, seller := setupProductServiceTest(t)

	createThumbnailedProduct(t, testDB, seller.ID, "무농약 사과", 12000, 0)

	// A product whose image never finished uploading stays out of listings
	bare := &model.Product{UserID: seller.ID, Name: "사과 주스", Price: 3000, Stock: 1}
	require.NoError(t, testDB.Create(bare).Error)
	require.NoError(t, testDB.Create(&model.Image{ProductID: bare.ID, IsThumbnail: true, ImageUUID: "pending"}).Error)

	result, err := productService.Search("사과")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "무농약 사과", result.Items[0].Name)

	// Seller name matching is independent of product matching
	result, err = productService.Search("바다")
	require.NoError(t, err)
	require.Len(t, result.Sellers, 1)
	assert.Equal(t, seller.Name, result.Sellers[0].Name)
	assert.Empty(t, result.Items)
}

func TestProductService_List_OrderByValidation(t *testing.T) {
	productService, _, _, _ := setupProductServiceTest(t)

	_, err := productService.List("", repository.ProductOrderBy("price"))
	assert.ErrorIs(t, err, ErrInvalidOrderBy)

	_, err = productService.Sellers("", repository.ProductOrderBy("price"))
	assert.ErrorIs(t, err, ErrInvalidOrderBy)
}

func TestProductService_List_OrderedBySales(t *testing.T) {
	productService, testDB, _, seller := setupProductServiceTest(t)

	createThumbnailedProduct(t, testDB, seller.ID, "인기 없는 상품", 1000, 1)
	createThumbnailedProduct(t, testDB, seller.ID, "인기 상품", 1000, 50)

	items, err := productService.List("", repository.ProductOrderByOrder)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "인기 상품", items[0].Name)
}

func TestProductService_Detail(t *testing.T) {
	productService, testDB, _, seller := setupProductServiceTest(t)

	product := createThumbnailedProduct(t, testDB, seller.ID, "상세 상품", 9900, 0)

	detail, err := productService.Detail(product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, detail.Product.ID)
	assert.Equal(t, seller.Name, detail.Product.User.Name)
	require.Len(t, detail.Images, 1)
	assert.Empty(t, detail.Reviews)

	_, err = productService.Detail(99999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
