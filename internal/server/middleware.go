package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gros-dev/gros/internal/auth"
	"github.com/gros-dev/gros/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrCustomerNotFound  = errors.New("customer not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

// GetSessionData returns the session attached by the auth middleware
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// AuthMiddleware validates JWT bearer tokens and falls back to the legacy
// Basic credentials some older clients still send.
func AuthMiddleware(db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Legacy clients authenticate with Basic email:password
		if strings.HasPrefix(authHeader, "Basic ") {
			email, password, ok := c.Request.BasicAuth()
			if !ok {
				respondWithError(c, log, http.StatusUnauthorized, ErrInvalidAuthFormat, "Invalid authorization header format")
				return
			}

			var customer models.Customer
			if err := db.Where("email = ?", email).First(&customer).Error; err != nil {
				respondWithError(c, log, http.StatusUnauthorized, ErrCustomerNotFound, "Invalid credentials")
				return
			}
			if err := auth.VerifyPassword(password, customer.PasswordHash); err != nil {
				respondWithError(c, log, http.StatusUnauthorized, ErrInvalidToken, "Invalid credentials")
				return
			}

			setSession(c, &auth.SessionData{
				CustomerID: customer.ID,
				Email:      customer.Email,
				Role:       customer.Role,
				AuthMethod: "basic",
			})
			c.Next()
			return
		}

		// Extract token from Authorization header
		token, err := extractBearerToken(authHeader)
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Missing authorization header"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			respondWithError(c, log, http.StatusUnauthorized, err, message)
			return
		}

		// Validate JWT token
		claims, err := auth.ValidateToken(token)
		if err != nil {
			log.Error().Err(err).Msg("Failed to validate JWT token")
			respondWithError(c, log, http.StatusUnauthorized, ErrInvalidToken, "Invalid or expired token")
			return
		}

		// Verify customer exists in database
		var customer models.Customer
		if err := db.Where("id = ?", claims.CustomerID).First(&customer).Error; err != nil {
			log.Error().Err(err).Int64("customer_id", claims.CustomerID).Msg("Customer not found")
			respondWithError(c, log, http.StatusUnauthorized, ErrCustomerNotFound, "Customer not found")
			return
		}

		// Set session data
		setSession(c, &auth.SessionData{
			CustomerID: customer.ID,
			Email:      customer.Email,
			Role:       customer.Role,
			AuthMethod: "jwt",
		})

		c.Next()
	}
}

// AdminOnlyMiddleware ensures the authenticated customer is an admin
func AdminOnlyMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			respondWithError(c, log, http.StatusUnauthorized, errors.New("no session"), "Unauthorized")
			return
		}

		if !sessionData.IsAdmin() {
			respondWithError(c, log, http.StatusForbidden, errors.New("not admin"), "Admin access required")
			return
		}

		c.Next()
	}
}
