package config

import (
	"fmt"

	"github.com/rahulkv7/StyleKart/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection
func InitDB() {
	if App == nil {
		if _, err := LoadConfig(); err != nil {
			panic(fmt.Sprintf("Failed to load config: %v", err))
		}
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		App.DBHost, App.DBPort, App.DBUser, App.DBPassword, App.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	// Auto-migrate the schema
	err = DB.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	EnsureOrderIndexes(DB)
}

// EnsureOrderIndexes creates the partial unique indexes on orders. Uniqueness
// is enforced only when the identifier is present, since many orders carry
// only one of txn_id/order_id and NULLs must not collide with each other.
func EnsureOrderIndexes(db *gorm.DB) {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_txn_id
			ON orders (txn_id) WHERE txn_id IS NOT NULL AND txn_id <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_id
			ON orders (order_id) WHERE order_id IS NOT NULL AND order_id <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_created
			ON orders (status, created_at DESC)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			panic(fmt.Sprintf("Failed to create order index: %v", err))
		}
	}
}
