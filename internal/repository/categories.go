package repository

import (
	"context"

	"catalog-service/internal/model"

	"gorm.io/gorm"
)

// CategoryStore persists product categories
type CategoryStore struct {
	db *gorm.DB
}

// List returns all categories ordered by name
func (s *CategoryStore) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, classify(err)
	}
	return categories, nil
}

// Get returns one category
func (s *CategoryStore) Get(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, classify(err)
	}
	return &category, nil
}

// Create inserts a category
func (s *CategoryStore) Create(ctx context.Context, category *model.Category) error {
	return classify(s.db.WithContext(ctx).Create(category).Error)
}

// Update renames an existing category
func (s *CategoryStore) Update(ctx context.Context, category *model.Category) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Category
		if err := tx.First(&existing, category.ID).Error; err != nil {
			return err
		}
		existing.Name = category.Name
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*category = existing
		return nil
	})
	return classify(err)
}

// Delete removes a category that no product references
func (s *CategoryStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrInUse
		}

		result := tx.Delete(&model.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return classify(err)
}
