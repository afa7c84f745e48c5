package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-service/internal/model"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func render(t *testing.T, r *Renderer, name string, data interface{}) string {
	t.Helper()
	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	ctx.Set("csrf", "token-123")

	var buf bytes.Buffer
	if err := r.Render(&buf, name, data, ctx); err != nil {
		t.Fatalf("render %s: %v", name, err)
	}
	return buf.String()
}

func sampleProduct() model.Product {
	return model.Product{
		ID:         3,
		Name:       "Hammer",
		Price:      decimal.RequireFromString("12.5"),
		Stock:      10,
		IsActive:   true,
		CategoryID: 1,
		Category:   &model.Category{ID: 1, Name: "Tools"},
		CompanyID:  2,
		Company:    &model.Company{ID: 2, Name: "Acme"},
		ProductImages: []model.ProductImage{
			{ID: 8, ProductID: 3, ImageURL: "/images/products/a.png"},
			{ID: 9, ProductID: 3, ImageURL: "https://res.cloudinary.com/demo/image/upload/b.png"},
		},
	}
}

func TestRenderIndex(t *testing.T) {
	c := qt.New(t)
	r, err := NewRenderer("http://localhost:8080")
	c.Assert(err, qt.IsNil)

	out := render(t, r, ProductsIndex, []model.Product{sampleProduct()})
	c.Assert(out, qt.Contains, "<title>Products - Catalog</title>")
	c.Assert(out, qt.Contains, `src="http://localhost:8080/images/products/a.png"`)
	c.Assert(out, qt.Contains, "12.50")
	c.Assert(out, qt.Contains, "Tools")
	c.Assert(out, qt.Contains, `action="/Products/Delete/3"`)
	c.Assert(out, qt.Contains, `name="_csrf" value="token-123"`)

	empty := render(t, r, ProductsIndex, []model.Product{})
	c.Assert(empty, qt.Contains, "No products yet.")
}

func TestRenderDetails(t *testing.T) {
	c := qt.New(t)
	r, err := NewRenderer("http://localhost:8080/")
	c.Assert(err, qt.IsNil)

	p := sampleProduct()
	out := render(t, r, ProductsDetails, &p)
	c.Assert(out, qt.Contains, `src="https://res.cloudinary.com/demo/image/upload/b.png"`)
	c.Assert(out, qt.Contains, `action="/Products/DeleteImage/9"`)
	c.Assert(out, qt.Contains, `href="/Products/AddImage/3"`)
}

func TestRenderForm(t *testing.T) {
	c := qt.New(t)
	r, err := NewRenderer("http://localhost:8080")
	c.Assert(err, qt.IsNil)

	vm := &model.ProductViewModel{
		Name:       "<b>Saw</b>",
		PriceText:  "abc",
		IsActive:   true,
		CategoryID: 1,
		Categories: []model.SelectOption{{Value: 0, Text: "(Select a category...)"}, {Value: 1, Text: "Tools"}},
		Companies:  []model.SelectOption{{Value: 0, Text: "(Select a company...)"}},
	}
	vm.Errors.Add("Price", "The field Price must be a number.")
	vm.Errors.Add("", "There is already a record with the same name.")

	out := render(t, r, ProductsCreate, vm)
	c.Assert(out, qt.Contains, "<title>Create Product - Catalog</title>")
	c.Assert(out, qt.Contains, `action="/Products/Create"`)
	c.Assert(out, qt.Contains, `<option value="1" selected>Tools</option>`)
	c.Assert(out, qt.Contains, "The field Price must be a number.")
	c.Assert(out, qt.Contains, "There is already a record with the same name.")
	c.Assert(out, qt.Contains, " checked")
	c.Assert(strings.Contains(out, "<b>Saw</b>"), qt.IsFalse)

	vm.ID = 3
	out = render(t, r, ProductsEdit, vm)
	c.Assert(out, qt.Contains, `action="/Products/Edit/3"`)
	c.Assert(out, qt.Contains, `name="ID" value="3"`)
}

func TestRenderAddImageAndError(t *testing.T) {
	c := qt.New(t)
	r, err := NewRenderer("")
	c.Assert(err, qt.IsNil)

	out := render(t, r, ProductsAddImage, &model.AddProductImageViewModel{ProductID: 3})
	c.Assert(out, qt.Contains, `action="/Products/AddImage/3"`)
	c.Assert(out, qt.Contains, `enctype="multipart/form-data"`)

	out = render(t, r, Error, ErrorPage{Status: 404, Message: "Not Found"})
	c.Assert(out, qt.Contains, "404")
	c.Assert(out, qt.Contains, "Not Found")
}

func TestRenderUnknownPage(t *testing.T) {
	c := qt.New(t)
	r, err := NewRenderer("")
	c.Assert(err, qt.IsNil)

	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err = r.Render(&bytes.Buffer{}, "products/missing", nil, ctx)
	c.Assert(err, qt.ErrorMatches, `template "products/missing" not found`)
}
