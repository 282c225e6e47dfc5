package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunhobaek/freshmarket-backend/internal/app/service"
	apperrors "github.com/sunhobaek/freshmarket-backend/internal/errors"
	"github.com/sunhobaek/freshmarket-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// Orders returns the authenticated user's purchase history, newest first.
// GET /api/v1/users/orders
func (ctrl *OrderController) Orders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, apperrors.MsgInvalidToken)
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c)
		return
	}

	type orderResponse struct {
		ID          uint   `json:"id"`
		ProductID   uint   `json:"product_id"`
		ProductName string `json:"product_name"`
		Quantity    int    `json:"quantity"`
		CreatedAt   string `json:"created_at"`
	}

	result := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, orderResponse{
			ID:          order.ID,
			ProductID:   order.ProductID,
			ProductName: order.Product.Name,
			Quantity:    order.Quantity,
			CreatedAt:   order.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"RESULT": result})
}
