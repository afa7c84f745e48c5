package repository

import (
	"context"

	"catalog-service/internal/model"

	"gorm.io/gorm"
)

// CompanyStore persists the companies products belong to
type CompanyStore struct {
	db *gorm.DB
}

// List returns all companies ordered by name
func (s *CompanyStore) List(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	if err := s.db.WithContext(ctx).Order("name").Find(&companies).Error; err != nil {
		return nil, classify(err)
	}
	return companies, nil
}

// Get returns one company
func (s *CompanyStore) Get(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, classify(err)
	}
	return &company, nil
}

// Create inserts a company
func (s *CompanyStore) Create(ctx context.Context, company *model.Company) error {
	return classify(s.db.WithContext(ctx).Create(company).Error)
}

// Update renames an existing company
func (s *CompanyStore) Update(ctx context.Context, company *model.Company) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Company
		if err := tx.First(&existing, company.ID).Error; err != nil {
			return err
		}
		existing.Name = company.Name
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*company = existing
		return nil
	})
	return classify(err)
}

// Delete removes a company that no product references
func (s *CompanyStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("company_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrInUse
		}

		result := tx.Delete(&model.Company{}, id)
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
