package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"catalog-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// bindProductForm copies the posted form into vm. Values that cannot be parsed are recorded in
// vm.Errors; the struct rules are checked afterwards by validateForm.
func bindProductForm(c echo.Context, vm *model.ProductViewModel) error {
	vm.Name = strings.TrimSpace(c.FormValue("Name"))
	vm.PriceText = strings.TrimSpace(c.FormValue("Price"))
	vm.IsActive = formBool(c.FormValue("IsActive"))
	vm.CategoryID = formUint(c.FormValue("CategoryID"))
	vm.CompanyID = formUint(c.FormValue("CompanyID"))

	switch {
	case vm.PriceText == "":
		vm.Errors.Add("Price", "The Price field is required.")
	default:
		price, err := decimal.NewFromString(vm.PriceText)
		if err != nil {
			vm.Errors.Add("Price", "The field Price must be a number.")
		} else if msg := priceMessage(price); msg != "" {
			vm.Errors.Add("Price", msg)
		} else {
			vm.Price = price
		}
	}

	if raw := strings.TrimSpace(c.FormValue("Stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			vm.Errors.Add("Stock", "The field Stock must be a number.")
		} else {
			vm.Stock = stock
		}
	}

	file, err := formFile(c, "ImageFile")
	if err != nil {
		return err
	}
	vm.ImageFile = file
	return nil
}

// maxPrice is the first value a decimal(18,2) column cannot hold
var maxPrice = decimal.New(1, 16)

// priceMessage returns the field error for a price the products table cannot store exactly,
// or "" when the price is acceptable
func priceMessage(price decimal.Decimal) string {
	switch {
	case price.IsNegative():
		return "The field Price must be greater than or equal to 0."
	case !price.Equal(price.Truncate(2)):
		return "The field Price must have at most 2 decimals."
	case price.GreaterThanOrEqual(maxPrice):
		return "The field Price must be less than 10000000000000000."
	}
	return ""
}

// formFile returns nil when the field was posted without a file
func formFile(c echo.Context, name string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func formBool(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func formUint(v string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}
