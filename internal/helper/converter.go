package helper

import (
	"context"
	"fmt"

	"catalog-service/internal/model"
	"catalog-service/internal/repository"
)

// ConverterHelper maps between products and their form view model
type ConverterHelper struct {
	store  *repository.Store
	combos *CombosHelper
}

func NewConverterHelper(store *repository.Store, combos *CombosHelper) *ConverterHelper {
	return &ConverterHelper{store: store, combos: combos}
}

// ToProduct resolves the selected category and company and builds the entity.
// The id is left at zero for a new product.
func (h *ConverterHelper) ToProduct(ctx context.Context, vm *model.ProductViewModel, isNew bool) (*model.Product, error) {
	category, err := h.store.Categories.Get(ctx, vm.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", vm.CategoryID, err)
	}
	company, err := h.store.Companies.Get(ctx, vm.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("company %d: %w", vm.CompanyID, err)
	}

	product := &model.Product{
		Name:       vm.Name,
		Price:      vm.Price,
		Stock:      vm.Stock,
		IsActive:   vm.IsActive,
		CategoryID: category.ID,
		Category:   category,
		CompanyID:  company.ID,
		Company:    company,
	}
	if !isNew {
		product.ID = vm.ID
		product.ProductImages = vm.ProductImages
	}
	return product, nil
}

// ToProductViewModel fills the form from product, including both combos and its images
func (h *ConverterHelper) ToProductViewModel(ctx context.Context, product *model.Product) (*model.ProductViewModel, error) {
	categories, err := h.combos.ComboCategories(ctx)
	if err != nil {
		return nil, err
	}
	companies, err := h.combos.ComboCompanies(ctx)
	if err != nil {
		return nil, err
	}

	return &model.ProductViewModel{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price,
		PriceText:     product.Price.StringFixed(2),
		Stock:         product.Stock,
		IsActive:      product.IsActive,
		CategoryID:    product.CategoryID,
		CompanyID:     product.CompanyID,
		Categories:    categories,
		Companies:     companies,
		ProductImages: product.ProductImages,
	}, nil
}
