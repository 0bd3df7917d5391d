package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Role values stored on customers and echoed into login responses
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// Order status values
const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusConfirmed = "CONFIRMED"
)

// BaseModel provides common fields and auto-generated ULID for catalog models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Customer represents a storefront account. Customer ids stay integral
// because the login/logout wire contract exposes customerId as a number.
type Customer struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	Role         string    `json:"role" gorm:"not null;default:CUSTOMER"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsAdmin reports whether the customer carries the admin role
func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Product represents a catalog product
type Product struct {
	BaseModel
	Name        string  `json:"name" gorm:"not null;index"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"not null"`
	Stock       int     `json:"stock" gorm:"not null;default:0"`
	ImageURL    string  `json:"image_url"`
}

// CartItem represents one product line in a customer's cart
type CartItem struct {
	BaseModel
	CustomerID int64  `json:"customer_id" gorm:"not null;index"`
	ProductID  string `json:"product_id" gorm:"not null"`
	Quantity   int    `json:"quantity" gorm:"not null;default:1"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Product Product `json:"product,omitzero" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// Order represents a placed order
type Order struct {
	BaseModel
	CustomerID int64     `json:"customer_id" gorm:"not null;index"`
	Status     string    `json:"status" gorm:"not null;default:PLACED"`
	Total      float64   `json:"total" gorm:"not null"`
	PlacedAt   time.Time `json:"placed_at"`

	// Relationships
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a snapshot of a product line at order time. Name and price
// are copied so later catalog edits do not rewrite order history.
type OrderItem struct {
	BaseModel
	OrderID     string  `json:"-" gorm:"not null;index"`
	ProductID   string  `json:"product_id" gorm:"not null"`
	ProductName string  `json:"product_name" gorm:"not null"`
	Price       float64 `json:"price" gorm:"not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
}

// LogoutEvent is the audit record written by the worker when a client
// reports a logout
type LogoutEvent struct {
	BaseModel
	Email       string    `json:"email" gorm:"not null;index"`
	LoggedOutAt time.Time `json:"logged_out_at"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&Customer{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}, &LogoutEvent{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
