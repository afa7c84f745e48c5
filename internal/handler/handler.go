package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strconv"

	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
)

// DuplicateMessage is shown when a unique name is already taken
const DuplicateMessage = "There is already a record with the same name."

var errMissingReference = errors.New("referenced category or company does not exist")

// ImageHelper uploads and removes product images
type ImageHelper interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
	RemoveImage(ctx context.Context, ref string) error
}

// CombosHelper fills the drop-downs of the product form
type CombosHelper interface {
	ComboCategories(ctx context.Context) ([]model.SelectOption, error)
	ComboCompanies(ctx context.Context) ([]model.SelectOption, error)
}

// ConverterHelper maps between products and the product form
type ConverterHelper interface {
	ToProduct(ctx context.Context, vm *model.ProductViewModel, isNew bool) (*model.Product, error)
	ToProductViewModel(ctx context.Context, product *model.Product) (*model.ProductViewModel, error)
}

// Deps are the collaborators shared by the HTML controller and the JSON API
type Deps struct {
	Store     *repository.Store
	Images    ImageHelper
	Combos    CombosHelper
	Converter ConverterHelper
	Metrics   *prometheus.Metrics
	// Folder is the storage folder product images are written to
	Folder string
}

// parseID reads the :id path parameter; ok is false when it is missing or not a positive integer
func parseID(c echo.Context, name string) (uint, bool) {
	raw := c.Param(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func categoryName(p *model.Product) string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
