package controller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/app/service"
	"github.com/sunhobaek/freshmarket-backend/internal/db"
	"gorm.io/gorm"
)

// fakeStorage stands in for S3 in controller tests.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

func setupProductControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *fakeStorage, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := newFakeStorage()
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	productService := service.NewProductService(productRepo, userRepo, reviewRepo, store, testDB)
	orderService := service.NewOrderService(orderRepo, testDB)
	productController := NewProductController(productService, orderService)

	seller := &model.User{
		KakaoAccount: "4001",
		Name:         "과일가게",
		Point:        50000,
	}
	require.NoError(t, testDB.Create(seller).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", seller.ID)
		c.Next()
	})
	router.POST("/products", productController.Upload)
	router.POST("/products/:product_id/purchase", productController.Purchase)

	return router, testDB, store, seller
}

// productForm builds a multipart upload body with the given fields and one
// image file per name.
func productForm(t *testing.T, fields map[string]string, imageNames ...string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, name := range imageNames {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func seedOwnedProduct(t *testing.T, testDB *gorm.DB, sellerID uint, name string) *model.Product {
	t.Helper()

	product := &model.Product{
		UserID: sellerID,
		Name:   name,
		Price:  10000,
		Stock:  5,
	}
	require.NoError(t, testDB.Create(product).Error)

	url := "https://cdn.test/" + name + ".jpg"
	require.NoError(t, testDB.Create(&model.Image{
		ProductID:   product.ID,
		Title:       name + ".jpg",
		URL:         &url,
		IsThumbnail: true,
		ImageUUID:   name + "-key",
	}).Error)

	return product
}

func TestProductController_Upload_Success(t *testing.T) {
	router, testDB, _, _ := setupProductControllerTest(t)

	body, contentType := productForm(t, map[string]string{
		"name":  "성주 참외 2kg",
		"price": "18000",
		"stock": "4",
	}, "front.jpg", "back.jpg")

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "SUCCESS")

	var product model.Product
	require.NoError(t, testDB.Where("name = ?", "성주 참외 2kg").First(&product).Error)
	assert.Equal(t, 4, product.Stock)

	var images []model.Image
	testDB.Where("product_id = ?", product.ID).Order("id ASC").Find(&images)
	require.Len(t, images, 2)
	assert.True(t, images[0].IsThumbnail)
	for _, img := range images {
		require.NotNil(t, img.URL)
		assert.Contains(t, *img.URL, "https://cdn.test/")
	}
}

func TestProductController_Upload_ReplacesExistingProduct(t *testing.T) {
	router, testDB, store, seller := setupProductControllerTest(t)

	old := seedOwnedProduct(t, testDB, seller.ID, "작년 상품")

	body, contentType := productForm(t, map[string]string{
		"name":       "올해 상품",
		"price":      "22000",
		"product_id": strconv.FormatUint(uint64(old.ID), 10),
	}, "new.jpg")

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "SUCCESS_AND_REPLACED")

	// The old product is gone, the new one stands in its place
	err := testDB.First(&model.Product{}, old.ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var replacement model.Product
	require.NoError(t, testDB.Where("name = ?", "올해 상품").First(&replacement).Error)

	// The old product's objects were removed from storage
	assert.Contains(t, store.deleted, "작년 상품-key")
}

func TestProductController_Upload_InvalidReplaceTarget(t *testing.T) {
	router, testDB, _, _ := setupProductControllerTest(t)

	body, contentType := productForm(t, map[string]string{
		"name":       "상품",
		"price":      "1000",
		"product_id": "abc",
	}, "a.jpg")

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PRODUCT")

	// The bad target is rejected before anything is created
	var productCount, imageCount int64
	testDB.Model(&model.Product{}).Count(&productCount)
	testDB.Model(&model.Image{}).Count(&imageCount)
	assert.Zero(t, productCount)
	assert.Zero(t, imageCount)
}

func TestProductController_Purchase_MissingBody(t *testing.T) {
	router, testDB, _, seller := setupProductControllerTest(t)

	product := seedOwnedProduct(t, testDB, seller.ID, "감자 3kg")

	req := httptest.NewRequest(http.MethodPost, "/products/"+strconv.FormatUint(uint64(product.ID), 10)+"/purchase", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "KEY_ERROR")

	var orderCount int64
	testDB.Model(&model.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)
}
