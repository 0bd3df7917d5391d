package workers

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gros-dev/gros/internal/config"
	"github.com/gros-dev/gros/internal/models"
	"github.com/gros-dev/gros/internal/tasks"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestHandleLogoutAudit(t *testing.T) {
	db := newTestDB(t)

	task, err := tasks.NewLogoutAuditTask("ada@example.com")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := HandleLogoutAudit(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var events []models.LogoutEvent
	if err := db.Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Email != "ada@example.com" {
		t.Errorf("email = %q", events[0].Email)
	}
	if events[0].LoggedOutAt.IsZero() {
		t.Error("logged_out_at not set")
	}
}

func TestHandleLogoutAuditEmptyEmail(t *testing.T) {
	db := newTestDB(t)

	task, err := tasks.NewLogoutAuditTask("")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Must not fail, and must not write an event
	if err := HandleLogoutAudit(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var count int64
	db.Model(&models.LogoutEvent{}).Count(&count)
	if count != 0 {
		t.Errorf("events = %d, want 0", count)
	}
}

func TestHandleOrderConfirm(t *testing.T) {
	db := newTestDB(t)

	order := &models.Order{CustomerID: 1, Status: models.OrderStatusPlaced, Total: 10, PlacedAt: time.Now()}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	task, err := tasks.NewOrderConfirmTask(order.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := HandleOrderConfirm(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var reloaded models.Order
	if err := models.FindByID(db, order.ID, &reloaded); err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.Status != models.OrderStatusConfirmed {
		t.Errorf("status = %q, want CONFIRMED", reloaded.Status)
	}

	// Safe to retry
	if err := HandleOrderConfirm(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestHandleOrderConfirmMissingOrder(t *testing.T) {
	db := newTestDB(t)

	task, err := tasks.NewOrderConfirmTask("01JXDOESNOTEXIST0000000000")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// A deleted order is not an error worth retrying
	if err := HandleOrderConfirm(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestHandleCartCleanup(t *testing.T) {
	db := newTestDB(t)
	cfg := &config.Config{Worker: config.WorkerConfig{CartMaxAgeHours: 24}}

	product := &models.Product{Name: "Milk", Price: 1.50, Stock: 5}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	stale := &models.CartItem{CustomerID: 1, ProductID: product.ID, Quantity: 1}
	fresh := &models.CartItem{CustomerID: 2, ProductID: product.ID, Quantity: 1}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("create stale item: %v", err)
	}
	if err := db.Create(fresh).Error; err != nil {
		t.Fatalf("create fresh item: %v", err)
	}

	// Age the stale item past the cutoff
	old := time.Now().Add(-48 * time.Hour)
	if err := db.Model(stale).Update("updated_at", old).Error; err != nil {
		t.Fatalf("age item: %v", err)
	}

	task, err := tasks.NewCartCleanupTask()
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := HandleCartCleanup(context.Background(), task, db, cfg, zerolog.Nop()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var remaining []models.CartItem
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining = %d, want 1", len(remaining))
	}
	if remaining[0].CustomerID != 2 {
		t.Errorf("surviving item belongs to customer %d, want 2", remaining[0].CustomerID)
	}
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		valid bool
	}{
		{"nightly", "0 3 * * *", true},
		{"every minute", "* * * * *", true},
		{"empty", "", false},
		{"garbage", "not a schedule", false},
		{"six fields", "0 0 3 * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSchedule(tt.expr)
			if (got != nil) != tt.valid {
				t.Errorf("parseSchedule(%q) valid = %v, want %v", tt.expr, got != nil, tt.valid)
			}
		})
	}
}
