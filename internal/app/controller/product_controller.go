package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/app/service"
	apperrors "github.com/sunhobaek/freshmarket-backend/internal/errors"
	"github.com/sunhobaek/freshmarket-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
	orderService   service.OrderService
}

func NewProductController(productService service.ProductService, orderService service.OrderService) *ProductController {
	return &ProductController{
		productService: productService,
		orderService:   orderService,
	}
}

// productItemResponse 목록용 상품 응답. 가격은 소수점 둘째 자리 문자열.
type productItemResponse struct {
	ID              uint    `json:"id"`
	UserID          uint    `json:"user_id"`
	Name            string  `json:"name"`
	Price           string  `json:"price"`
	Stock           int     `json:"stock"`
	OrderedQuantity int     `json:"ordered_quantity"`
	Thumbnail       string  `json:"thumbnail"`
	Origin          *string `json:"origin"`
	Storage         *string `json:"storage"`
}

func toItemResponses(items []repository.ProductListItem) []productItemResponse {
	out := make([]productItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, productItemResponse{
			ID:              item.ID,
			UserID:          item.UserID,
			Name:            item.Name,
			Price:           fmt.Sprintf("%.2f", item.Price),
			Stock:           item.Stock,
			OrderedQuantity: item.OrderedQuantity,
			Thumbnail:       item.Thumbnail,
			Origin:          item.OriginName,
			Storage:         item.StorageName,
		})
	}
	return out
}

// Search finds sellers and products by keyword.
// GET /api/v1/products/search?keyword=
func (ctrl *ProductController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	keyword := c.Query("keyword")
	result, err := ctrl.productService.Search(keyword)
	if err != nil {
		log.Error("Search failed", err, map[string]interface{}{
			"keyword": keyword,
		})
		apperrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seller": result.Sellers,
		"item":   toItemResponses(result.Items),
	})
}

// Sellers lists distinct sellers, optionally narrowed by category.
// GET /api/v1/products/seller?category=&order-by=
func (ctrl *ProductController) Sellers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	category := c.Query("category")
	orderBy := repository.ProductOrderBy(c.Query("order-by"))

	sellers, err := ctrl.productService.Sellers(category, orderBy)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderBy) {
			apperrors.BadRequest(c, apperrors.MsgInvalidOrderBy)
			return
		}
		log.Error("Failed to fetch sellers", err, nil)
		apperrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"RESULT": sellers})
}

// SellerProducts lists one seller's thumbnailed products.
// GET /api/v1/products/seller/:user_id?category=
func (ctrl *ProductController) SellerProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sellerID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.MsgInvalidUser)
		return
	}

	items, err := ctrl.productService.SellerProducts(uint(sellerID), c.Query("category"))
	if err != nil {
		log.Error("Failed to fetch seller products", err, map[string]interface{}{
			"seller_id": sellerID,
		})
		apperrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"RESULT": toItemResponses(items)})
}

// List returns the top products for the main page.
// GET /api/v1/products/product?category=&order-by=
func (ctrl *ProductController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	category := c.Query("category")
	orderBy := repository.ProductOrderBy(c.Query("order-by"))

	items, err := ctrl.productService.List(category, orderBy)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderBy) {
			apperrors.BadRequest(c, apperrors.MsgInvalidOrderBy)
			return
		}
		log.Error("Failed to fetch product list", err, nil)
		apperrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"RESULT": toItemResponses(items)})
}

// Detail returns the product page: product fields, seller, images and the
// review thread.
// GET /api/v1/products/:product_id
func (ctrl *ProductController) Detail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.NotFound(c, apperrors.MsgNoItem)
		return
	}

	detail, err := ctrl.productService.Detail(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.MsgNoItem)
			return
		}
		log.Error("Failed to fetch product detail", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c)
		return
	}

	product := detail.Product
	var origin, storage *string
	if product.Origin != nil {
		origin = &product.Origin.Name
	}
	if product.Storage != nil {
		storage = &product.Storage.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"RESULT": gin.H{
			"id":               product.ID,
			"name":             product.Name,
			"price":            fmt.Sprintf("%.2f", product.Price),
			"description":      product.Description,
			"stock":            product.Stock,
			"ordered_quantity": product.OrderedQuantity,
			"origin":           origin,
			"storage":          storage,
			"seller": gin.H{
				"id":            product.User.ID,
				"name":          product.User.Name,
				"profile_image": product.User.ProfileImage,
			},
			"images":  detail.Images,
			"reviews": detail.Reviews,
		},
	})
}

type purchaseRequest struct {
	Quantity   *int   `json:"quantity"`
	TotalPrice *int64 `json:"total_price"`
}

// Purchase buys a product with points.
// POST /api/v1/products/:product_id/purchase
func (ctrl *ProductController) Purchase(c *gin.Context) {
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

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil || req.TotalPrice == nil {
		apperrors.NotFound(c, apperrors.MsgKeyError)
		return
	}

	_, err = ctrl.orderService.Purchase(uint(productID), userID, *req.Quantity, *req.TotalPrice)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.MsgNoItem)
		case errors.Is(err, service.ErrInsufficientPoint):
			apperrors.BadRequest(c, apperrors.MsgInsufficientPoint)
		default:
			log.Error("Purchase failed", err, map[string]interface{}{
				"product_id": productID,
				"user_id":    userID,
			})
			apperrors.InternalError(c)
		}
		return
	}

	apperrors.Respond(c, http.StatusCreated, apperrors.MsgSuccess)
}

// Upload registers a product with its images. When product_id names an
// existing product, that product is replaced: the new one is created first
// and the old one deleted, answering 202 instead of 201.
// POST /api/v1/products
func (ctrl *ProductController) Upload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, apperrors.MsgInvalidToken)
		return
	}

	name := c.PostForm("name")
	priceStr := c.PostForm("price")
	if name == "" || priceStr == "" {
		apperrors.BadRequest(c, apperrors.MsgKeyError)
		return
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.MsgKeyError)
		return
	}
	stock, _ := strconv.Atoi(c.DefaultPostForm("stock", "0"))

	input := service.ProductUploadInput{
		Name:        name,
		Price:       price,
		Description: c.PostForm("description"),
		Stock:       stock,
	}
	if v := c.PostForm("origin_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			originID := uint(id)
			input.OriginID = &originID
		}
	}
	if v := c.PostForm("storage_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			storageID := uint(id)
			input.StorageID = &storageID
		}
	}

	// Replace target must be valid before anything is created
	var oldProductID uint
	replace := false
	if v := c.PostForm("product_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.MsgInvalidProduct)
			return
		}
		oldProductID = uint(id)
		replace = true
	}

	var uploads []service.ImageUpload
	form, err := c.MultipartForm()
	if err == nil {
		for _, fh := range form.File["images"] {
			f, err := fh.Open()
			if err != nil {
				log.Error("Failed to open uploaded file", err, map[string]interface{}{
					"filename": fh.Filename,
				})
				apperrors.InternalError(c)
				return
			}
			defer f.Close()
			uploads = append(uploads, service.ImageUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			})
		}
	}

	product, err := ctrl.productService.Upload(c.Request.Context(), userID, input, uploads)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoImages):
			apperrors.NotFound(c, apperrors.MsgImageFilesNone)
		case errors.Is(err, service.ErrRateLimited):
			apperrors.BadRequest(c, apperrors.MsgExceedMaxUpload)
		default:
			log.Error("Product upload failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c)
		}
		return
	}

	// Replace mode: the new product is in, remove the old one.
	if replace {
		if err := ctrl.productService.Delete(c.Request.Context(), userID, oldProductID); err != nil {
			log.Warn("Failed to delete replaced product", map[string]interface{}{
				"old_product_id": oldProductID,
				"new_product_id": product.ID,
				"error":          err.Error(),
			})
		}
		apperrors.Respond(c, http.StatusAccepted, apperrors.MsgSuccessAndReplaced)
		return
	}

	apperrors.Respond(c, http.StatusCreated, apperrors.MsgSuccess)
}

// Delete removes an owned product, its image rows and remote objects.
// DELETE /api/v1/products/:product_id
func (ctrl *ProductController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, apperrors.MsgInvalidToken)
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.MsgInvalidProduct)
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), userID, uint(productID)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.BadRequest(c, apperrors.MsgInvalidProduct)
			return
		}
		log.Error("Product delete failed", err, map[string]interface{}{
			"product_id": productID,
			"user_id":    userID,
		})
		apperrors.InternalError(c)
		return
	}

	c.Status(http.StatusNoContent)
}
