package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product
type Product struct {
	ID            uint            `json:"id" gorm:"primarykey"`
	Name          string          `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null"`
	Stock         int             `json:"stock" gorm:"not null;default:0"`
	IsActive      bool            `json:"is_active" gorm:"not null"`
	CategoryID    uint            `json:"category_id" gorm:"index;not null"`
	Category      *Category       `json:"category,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	CompanyID     uint            `json:"company_id" gorm:"index;not null"`
	Company       *Company        `json:"company,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	ProductImages []ProductImage  `json:"product_images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ImagesCount returns the number of images attached to the product
func (p *Product) ImagesCount() int {
	return len(p.ProductImages)
}

// FirstImage returns the first image of the product, if any
func (p *Product) FirstImage() *ProductImage {
	if len(p.ProductImages) == 0 {
		return nil
	}
	return &p.ProductImages[0]
}

// ProductImage is an image stored for a product. ImageURL is either a path relative to the
// public image host or an absolute URL returned by a remote store.
type ProductImage struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ImageURL  string    `json:"image_url" gorm:"type:varchar(500)"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullPath resolves the image reference against baseURL
func (i ProductImage) FullPath(baseURL string) string {
	if i.ImageURL == "" {
		return ""
	}
	if strings.HasPrefix(i.ImageURL, "http://") || strings.HasPrefix(i.ImageURL, "https://") {
		return i.ImageURL
	}

	path := i.ImageURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}
