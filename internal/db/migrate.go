package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mourad-dev/boutique/internal/models"
	"github.com/mourad-dev/boutique/internal/services"
)

// Models returns every persisted type, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Product{}, &models.Inventory{}, &models.InventoryHistory{},
		&models.Client{}, &models.Guarantor{},
		&models.Sale{}, &models.SaleItem{},
		&models.Provider{}, &models.ProviderBill{}, &models.ProviderPayment{},
		&models.Expense{},
	}
}

func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		dsn = GetNormalizedDSN()
	}
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is empty, check environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	// MIGRATIONS=1 runs sql migrations via golang-migrate; otherwise
	// AutoMigrate keeps dev environments in sync.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range Models() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"products", "inventories", "sales"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

// seed inserts a handful of demo products with opening stock. Stock goes
// through the inventory service so the first history rows exist too.
func seed(db *gorm.DB) {
	inv := services.NewInventoryService(db)
	demo := []struct {
		product models.Product
		stock   int
		min     int
	}{
		{models.Product{Name: "Samsung Galaxy A15", Code: "SGA15", PurchasePrice: decimal.NewFromInt(65000), CashPrice: decimal.NewFromInt(85000), Active: true}, 10, 2},
		{models.Product{Name: "Tecno Spark 20", Code: "TS20", PurchasePrice: decimal.NewFromInt(48000), CashPrice: decimal.NewFromInt(62000), Active: true}, 8, 2},
		{models.Product{Name: "Chargeur USB-C 25W", Code: "CHG25", PurchasePrice: decimal.NewFromInt(2500), CashPrice: decimal.NewFromInt(4000), Active: true}, 30, 5},
	}
	for _, d := range demo {
		var existing models.Product
		if err := db.Where("code = ?", d.product.Code).First(&existing).Error; err != gorm.ErrRecordNotFound {
			continue
		}
		p := d.product
		if err := db.Create(&p).Error; err != nil {
			continue
		}
		if _, err := inv.EnsureForProduct(db, p.ID, d.stock, d.min); err != nil {
			fmt.Printf("[DB] seed stock for %s: %v\n", p.Code, err)
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
