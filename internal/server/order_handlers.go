package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gros-dev/gros/internal/models"
	"github.com/gros-dev/gros/internal/tasks"
)

var (
	errEmptyCart         = errors.New("cart is empty")
	errInsufficientStock = errors.New("insufficient stock")
)

func isInsufficientStock(err error) bool {
	return errors.Is(err, errInsufficientStock)
}

// PlaceOrderRequest converts a customer's cart into an order
type PlaceOrderRequest struct {
	CustomerID int64 `json:"customerId" binding:"required"`
}

// @Summary Place order
// @Description Convert the customer's cart into an order. The cart is
// emptied and stock decremented in the same transaction; order
// confirmation runs asynchronously.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PlaceOrderRequest true "Order request"
// @Success 201 {object} models.Order
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/orders/place-order [post]
func (s *Server) placeOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionData, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if sessionData.CustomerID != req.CustomerID && !sessionData.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Preload("Product").Where("customer_id = ?", req.CustomerID).
			Order("created_at ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return errEmptyCart
		}

		order = &models.Order{
			CustomerID: req.CustomerID,
			Status:     models.OrderStatusPlaced,
			PlacedAt:   time.Now().UTC(),
		}
		for _, item := range items {
			if item.Product.Stock < item.Quantity {
				return fmt.Errorf("%w: %s", errInsufficientStock, item.Product.Name)
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Price:       item.Product.Price,
				Quantity:    item.Quantity,
			})
			order.Total += item.Product.Price * float64(item.Quantity)
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range items {
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		return tx.Where("customer_id = ?", req.CustomerID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		switch {
		case err == errEmptyCart:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case isInsufficientStock(err):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			s.logger.Error().Err(err).Msg("Failed to place order")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		}
		return
	}

	// Confirmation is handled by a worker; a queue outage must not fail
	// the order that was just committed.
	if task, terr := tasks.NewOrderConfirmTask(order.ID); terr == nil {
		if _, terr = s.asynqClient.Enqueue(task); terr != nil {
			s.logger.Warn().Err(terr).Str("order_id", order.ID).Msg("Failed to enqueue order confirmation")
		}
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Int64("customer_id", req.CustomerID).
		Float64("total", order.Total).
		Msg("Order placed")

	c.JSON(http.StatusCreated, order)
}

// @Summary Order history
// @Description List a customer's orders, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param customerId path int true "Customer ID"
// @Success 200 {array} models.Order
// @Router /api/orders/history/{customerId} [get]
func (s *Server) orderHistory(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer id"})
		return
	}

	sessionData, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if sessionData.CustomerID != customerID && !sessionData.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var orders []models.Order
	if err := s.db.Preload("Items").Where("customer_id = ?", customerID).
		Order("placed_at DESC").Find(&orders).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load order history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// @Summary List orders
// @Description List all orders across customers (admin only)
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Order
// @Router /api/orders [get]
func (s *Server) listOrders(c *gin.Context) {
	var orders []models.Order
	if err := s.db.Preload("Items").Order("placed_at DESC").Find(&orders).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, orders)
}
