package repository

import (
	"context"

	"catalog-service/internal/model"

	"gorm.io/gorm"
)

// ProductFilter narrows product listings; zero values mean "any"
type ProductFilter struct {
	IsActive   *bool
	CategoryID uint
	CompanyID  uint
}

// ProductStore persists products and their images
type ProductStore struct {
	db *gorm.DB
}

func (s *ProductStore) withDetails(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Category").
		Preload("Company").
		Preload("ProductImages", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.id")
		})
}

// List returns products with category, company and images loaded
func (s *ProductStore) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	query := s.withDetails(ctx)
	if f.IsActive != nil {
		query = query.Where("is_active = ?", *f.IsActive)
	}
	if f.CategoryID != 0 {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.CompanyID != 0 {
		query = query.Where("company_id = ?", f.CompanyID)
	}

	var products []model.Product
	if err := query.Order("products.name").Find(&products).Error; err != nil {
		return nil, classify(err)
	}
	return products, nil
}

// Get returns one product with category, company and images loaded
func (s *ProductStore) Get(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := s.withDetails(ctx).First(&product, id).Error; err != nil {
		return nil, classify(err)
	}
	return &product, nil
}

// Exists reports whether a product with id is stored
func (s *ProductStore) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

// Create inserts the product together with any images already attached to it
func (s *ProductStore) Create(ctx context.Context, product *model.Product) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Category", "Company").Create(product).Error
	})
	return classify(err)
}

// Update saves the scalar fields of product and appends newImages to it
func (s *ProductStore) Update(ctx context.Context, product *model.Product, newImages ...model.ProductImage) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := tx.Select("id").First(&existing, product.ID).Error; err != nil {
			return err
		}

		if err := tx.Model(&existing).
			Select("Name", "Price", "Stock", "IsActive", "CategoryID", "CompanyID", "UpdatedAt").
			Updates(product).Error; err != nil {
			return err
		}

		for i := range newImages {
			newImages[i].ID = 0
			newImages[i].ProductID = product.ID
			if err := tx.Create(&newImages[i]).Error; err != nil {
				return err
			}
			product.ProductImages = append(product.ProductImages, newImages[i])
		}
		return nil
	})
	return classify(err)
}

// Delete removes the product and its images, returning the removed images so their stored
// files can be cleaned up.
func (s *ProductStore) Delete(ctx context.Context, id uint) ([]model.ProductImage, error) {
	var images []model.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Order("id").Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Product{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return images, nil
}

// AddImage attaches a stored image reference to the product
func (s *ProductStore) AddImage(ctx context.Context, productID uint, imageURL string) (*model.ProductImage, error) {
	image := model.ProductImage{ProductID: productID, ImageURL: imageURL}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.Select("id").First(&product, productID).Error; err != nil {
			return err
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	return &image, nil
}

// ListImages returns the images of a product in insertion order
func (s *ProductStore) ListImages(ctx context.Context, productID uint) ([]model.ProductImage, error) {
	var images []model.ProductImage
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&images).Error; err != nil {
		return nil, classify(err)
	}
	return images, nil
}

// GetImage returns one product image
func (s *ProductStore) GetImage(ctx context.Context, id uint) (*model.ProductImage, error) {
	var image model.ProductImage
	if err := s.db.WithContext(ctx).First(&image, id).Error; err != nil {
		return nil, classify(err)
	}
	return &image, nil
}

// DeleteImage removes one product image and returns it, including the owning product id
func (s *ProductStore) DeleteImage(ctx context.Context, id uint) (*model.ProductImage, error) {
	var image model.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&image, id).Error; err != nil {
			return err
		}
		return tx.Delete(&image).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	return &image, nil
}
