package helper

import (
	"context"

	"catalog-service/internal/model"
	"catalog-service/internal/repository"
)

// CombosHelper builds the option lists of the product form drop-downs
type CombosHelper struct {
	store *repository.Store
}

func NewCombosHelper(store *repository.Store) *CombosHelper {
	return &CombosHelper{store: store}
}

// ComboCategories lists categories by name after a "(Select a category...)" placeholder with value 0
func (h *CombosHelper) ComboCategories(ctx context.Context) ([]model.SelectOption, error) {
	categories, err := h.store.Categories.List(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]model.SelectOption, 0, len(categories)+1)
	options = append(options, model.SelectOption{Value: 0, Text: "(Select a category...)"})
	for _, c := range categories {
		options = append(options, model.SelectOption{Value: c.ID, Text: c.Name})
	}
	return options, nil
}

// ComboCompanies lists companies by name after a "(Select a company...)" placeholder with value 0
func (h *CombosHelper) ComboCompanies(ctx context.Context) ([]model.SelectOption, error) {
	companies, err := h.store.Companies.List(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]model.SelectOption, 0, len(companies)+1)
	options = append(options, model.SelectOption{Value: 0, Text: "(Select a company...)"})
	for _, c := range companies {
		options = append(options, model.SelectOption{Value: c.ID, Text: c.Name})
	}
	return options, nil
}
