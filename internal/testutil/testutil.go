// Package testutil holds fixtures shared by the catalog package tests.
package testutil

import (
	"testing"

	"catalog-service/internal/model"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database that lives for the duration of the test.
// The pool is pinned to one connection because every sqlite memory connection is its own database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DBConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// Fixture holds the reference rows created by Seed
type Fixture struct {
	Tools  model.Category
	Garden model.Category
	Acme   model.Company
	Globex model.Company
	Hammer model.Product
	Shovel model.Product
}

// Seed inserts two categories, two companies and two products, the hammer with one image
func Seed(t testing.TB, db *gorm.DB) Fixture {
	t.Helper()

	f := Fixture{
		Tools:  model.Category{Name: "Tools"},
		Garden: model.Category{Name: "Garden"},
		Acme:   model.Company{Name: "Acme"},
		Globex: model.Company{Name: "Globex"},
	}
	for _, v := range []interface{}{&f.Tools, &f.Garden, &f.Acme, &f.Globex} {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	f.Hammer = model.Product{
		Name:          "Hammer",
		Price:         decimal.RequireFromString("12.50"),
		Stock:         10,
		IsActive:      true,
		CategoryID:    f.Tools.ID,
		CompanyID:     f.Acme.ID,
		ProductImages: []model.ProductImage{{ImageURL: "/images/products/hammer.png"}},
	}
	f.Shovel = model.Product{
		Name:       "Shovel",
		Price:      decimal.RequireFromString("30"),
		Stock:      0,
		IsActive:   false,
		CategoryID: f.Garden.ID,
		CompanyID:  f.Globex.ID,
	}
	for _, p := range []*model.Product{&f.Hammer, &f.Shovel} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return f
}
