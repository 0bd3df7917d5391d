package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gros-dev/gros/internal/models"
)

// CartItemDetail is one product line in a cart response
type CartItemDetail struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// CartResponse is the full cart for a customer
type CartResponse struct {
	Items []CartItemDetail `json:"items"`
	Total float64          `json:"total"`
}

// AddToCartRequest represents an add-to-cart request
type AddToCartRequest struct {
	CustomerID int64  `json:"customerId" binding:"required"`
	ProductID  string `json:"productId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest changes the quantity of a cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// cartCustomerID parses the :customerId path parameter and ensures the
// caller may act on that cart (self, or any cart for admins).
func (s *Server) cartCustomerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer id"})
		return 0, false
	}

	sessionData, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	if sessionData.CustomerID != id && !sessionData.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return 0, false
	}

	return id, true
}

func cartResponse(items []models.CartItem) CartResponse {
	resp := CartResponse{Items: make([]CartItemDetail, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, CartItemDetail{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Price:       item.Product.Price,
			Quantity:    item.Quantity,
		})
		resp.Total += item.Product.Price * float64(item.Quantity)
	}
	return resp
}

// @Summary Get cart
// @Description Get the cart for a customer
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param customerId path int true "Customer ID"
// @Success 200 {object} CartResponse
// @Router /api/cart/{customerId} [get]
func (s *Server) getCart(c *gin.Context) {
	customerID, ok := s.cartCustomerID(c)
	if !ok {
		return
	}

	var items []models.CartItem
	if err := s.db.Preload("Product").Where("customer_id = ?", customerID).
		Order("created_at ASC").Find(&items).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load cart")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, cartResponse(items))
}

// @Summary Add to cart
// @Description Add a product to a customer's cart. Adding a product already
// in the cart increments its quantity instead of creating a second line.
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddToCartRequest true "Cart item"
// @Success 200 {object} CartItemDetail
// @Router /api/cart [post]
func (s *Server) addToCart(c *gin.Context) {
	var req AddToCartRequest
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

	var product models.Product
	if err := models.FindByID(s.db, req.ProductID, &product); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var item models.CartItem
	err := s.db.Where("customer_id = ? AND product_id = ?", req.CustomerID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := s.db.Save(&item).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update cart item")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
	case err == gorm.ErrRecordNotFound:
		item = models.CartItem{
			CustomerID: req.CustomerID,
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to create cart item")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
	default:
		s.logger.Error().Err(err).Msg("Failed to query cart")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, CartItemDetail{
		ID:          item.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    item.Quantity,
	})
}

// loadCartItem fetches a cart line by id and checks the caller owns it
func (s *Server) loadCartItem(c *gin.Context) (*models.CartItem, bool) {
	var item models.CartItem
	if err := s.db.Preload("Product").Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find cart item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	sessionData, ok := GetSessionData(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	if sessionData.CustomerID != item.CustomerID && !sessionData.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return nil, false
	}

	return &item, true
}

// @Summary Update cart item
// @Description Change the quantity of a cart line
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Param request body UpdateCartItemRequest true "Quantity"
// @Success 200 {object} CartItemDetail
// @Router /api/cart/items/{id} [put]
func (s *Server) updateCartItem(c *gin.Context) {
	item, ok := s.loadCartItem(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item.Quantity = req.Quantity
	if err := s.db.Save(item).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update cart item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, CartItemDetail{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.Product.Name,
		Price:       item.Product.Price,
		Quantity:    item.Quantity,
	})
}

// @Summary Remove cart item
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Success 204
// @Router /api/cart/items/{id} [delete]
func (s *Server) removeCartItem(c *gin.Context) {
	item, ok := s.loadCartItem(c)
	if !ok {
		return
	}

	if err := s.db.Delete(item).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to remove cart item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.Status(http.StatusNoContent)
}
