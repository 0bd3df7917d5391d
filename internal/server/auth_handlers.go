package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gros-dev/gros/internal/auth"
	"github.com/gros-dev/gros/internal/models"
	"github.com/gros-dev/gros/internal/tasks"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the payload consumed by the client's session service.
// Fields match the legacy wire contract: customerId as a number, role under
// userRole, and the redundant isAdmin flag the admin flow still sets.
type LoginResponse struct {
	Token        string `json:"token"`
	CustomerID   int64  `json:"customerId"`
	Email        string `json:"email"`
	UserRole     string `json:"userRole"`
	CustomerName string `json:"customerName,omitempty"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
}

// CustomerDetail represents customer information returned in responses
type CustomerDetail struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func customerDetail(c *models.Customer) CustomerDetail {
	return CustomerDetail{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Role:      c.Role,
		CreatedAt: c.CreatedAt,
	}
}

// @Summary Register
// @Description Create a new customer account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/users/register [post]
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject duplicate emails up front for a friendlier error
	var count int64
	if err := s.db.Model(&models.Customer{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check existing email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	customer := &models.Customer{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         models.RoleCustomer,
	}

	if err := s.db.Create(customer).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	s.logger.Info().Int64("customer_id", customer.ID).Str("email", customer.Email).Msg("Customer registered")

	c.JSON(http.StatusCreated, gin.H{
		"customerId":   customer.ID,
		"email":        customer.Email,
		"customerName": customer.Name,
	})
}

// authenticate looks up the customer and verifies the password. Both
// failure modes collapse into the same response to avoid leaking which
// emails exist.
func (s *Server) authenticate(c *gin.Context, req LoginRequest) (*models.Customer, bool) {
	var customer models.Customer
	if err := s.db.Where("email = ?", req.Email).First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}

	if err := auth.VerifyPassword(req.Password, customer.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return nil, false
	}

	return &customer, true
}

// @Summary Login
// @Description Authenticate a customer with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, ok := s.authenticate(c, req)
	if !ok {
		return
	}

	token, err := auth.GenerateToken(customer.ID, customer.Email, customer.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Int64("customer_id", customer.ID).Str("email", customer.Email).Msg("Customer logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Token:        token,
		CustomerID:   customer.ID,
		Email:        customer.Email,
		UserRole:     customer.Role,
		CustomerName: customer.Name,
	})
}

// @Summary Admin login
// @Description Authenticate an administrator with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/users/admin/login [post]
func (s *Server) adminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, ok := s.authenticate(c, req)
	if !ok {
		return
	}

	if !customer.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	token, err := auth.GenerateToken(customer.ID, customer.Email, customer.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Int64("customer_id", customer.ID).Str("email", customer.Email).Msg("Admin logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Token:        token,
		CustomerID:   customer.ID,
		Email:        customer.Email,
		UserRole:     customer.Role,
		CustomerName: customer.Name,
		IsAdmin:      true,
	})
}

// @Summary Logout notification
// @Description Best-effort logout notification from the client. Always
// succeeds from the caller's perspective; the audit record is written by a
// worker.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/users/logout [post]
func (s *Server) logoutNotify(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		if sessionData, ok := GetSessionData(c); ok {
			email = sessionData.Email
		}
	}

	if email != "" {
		task, err := tasks.NewLogoutAuditTask(email)
		if err == nil {
			_, err = s.asynqClient.Enqueue(task)
		}
		if err != nil {
			// Best effort only; the client-side logout already happened
			s.logger.Warn().Err(err).Str("email", email).Msg("Failed to enqueue logout audit")
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// profileID parses the :id path parameter and ensures the caller may act
// on that profile (self, or any profile for admins).
func (s *Server) profileID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
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

// @Summary Get profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CustomerDetail
// @Router /api/users/me/{id} [get]
func (s *Server) getProfile(c *gin.Context) {
	id, ok := s.profileID(c)
	if !ok {
		return
	}

	var customer models.Customer
	if err := s.db.Where("id = ?", id).First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, customerDetail(&customer))
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CustomerDetail
// @Router /api/users/me/{id} [put]
func (s *Server) updateProfile(c *gin.Context) {
	id, ok := s.profileID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var customer models.Customer
	if err := s.db.Where("id = ?", id).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Email != "" {
		customer.Email = req.Email
	}

	if err := s.db.Save(&customer).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, customerDetail(&customer))
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/users/me/{id}/password [put]
func (s *Server) changePassword(c *gin.Context) {
	id, ok := s.profileID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var customer models.Customer
	if err := s.db.Where("id = ?", id).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	if err := auth.VerifyPassword(req.OldPassword, customer.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	customer.PasswordHash = passwordHash
	if err := s.db.Save(&customer).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to save password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

// @Summary List customers
// @Description List all customers (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CustomerDetail
// @Router /api/users [get]
func (s *Server) listCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := s.db.Order("created_at DESC").Find(&customers).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list customers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := make([]CustomerDetail, len(customers))
	for i := range customers {
		details[i] = customerDetail(&customers[i])
	}

	c.JSON(http.StatusOK, details)
}

// @Summary Delete customer
// @Description Delete a customer account (admin only, cannot delete self)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 204
// @Router /api/users/{id} [delete]
func (s *Server) deleteCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer id"})
		return
	}

	sessionData, _ := GetSessionData(c)

	// Prevent deleting self
	if sessionData != nil && id == sessionData.CustomerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	var customer models.Customer
	if err := s.db.Where("id = ?", id).First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Delete(&customer).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}

	s.logger.Info().
		Int64("customer_id", id).
		Int64("deleted_by", sessionData.CustomerID).
		Msg("Customer deleted")

	c.Status(http.StatusNoContent)
}
