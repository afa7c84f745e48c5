package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"catalog-service/internal/helper"
	"catalog-service/internal/repository"
	"catalog-service/internal/testutil"
	"catalog-service/internal/view"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func productFields(h *harness, name string) map[string]string {
	return map[string]string{
		"Name":       name,
		"Price":      "19.99",
		"Stock":      "5",
		"IsActive":   "true",
		"CategoryID": strconv.FormatUint(uint64(h.f.Tools.ID), 10),
		"CompanyID":  strconv.FormatUint(uint64(h.f.Acme.ID), 10),
	}
}

func TestProductsIndex(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	for _, target := range []string{"/Products", "/Products/", "/Products/Index"} {
		rec := h.do(http.MethodGet, target, nil, "")
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf(target))
		c.Assert(rec.Body.String(), qt.Contains, "Hammer")
		c.Assert(rec.Body.String(), qt.Contains, "Shovel")
		c.Assert(rec.Body.String(), qt.Contains, "http://localhost:8080/images/products/hammer.png")
	}
}

func TestProductsDetails(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.do(http.MethodGet, fmt.Sprintf("/Products/Details/%d", h.f.Hammer.ID), nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Contains, "Acme")
	c.Assert(rec.Body.String(), qt.Contains, "12.50")
	c.Assert(promtest.ToFloat64(h.metrics.ProductViewsCounter.WithLabelValues(strconv.FormatUint(uint64(h.f.Hammer.ID), 10), "Tools")), qt.Equals, 1.0)

	for _, target := range []string{"/Products/Details", "/Products/Details/abc", "/Products/Details/9999"} {
		rec := h.do(http.MethodGet, target, nil, "")
		c.Assert(rec.Code, qt.Equals, http.StatusNotFound, qt.Commentf(target))
	}
}

func TestProductsCreateForm(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/Products/Create", nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	body := rec.Body.String()
	c.Assert(body, qt.Contains, "(Select a category...)")
	c.Assert(body, qt.Contains, "(Select a company...)")
	c.Assert(body, qt.Contains, "Garden")
	c.Assert(body, qt.Contains, " checked")
}

func TestProductsCreate(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.postForm(t, "/Products/Create", productFields(h, "Saw"), "saw.png", testutil.PNG)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(rec.Header().Get(echo.HeaderLocation), qt.Equals, "/Products")

	products, err := h.store.Products.List(context.Background(), repository.ProductFilter{CompanyID: h.f.Acme.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(products, qt.HasLen, 2)
	saw := products[1]
	c.Assert(saw.Name, qt.Equals, "Saw")
	c.Assert(saw.Price.Equal(decimal.RequireFromString("19.99")), qt.IsTrue)
	c.Assert(saw.Stock, qt.Equals, 5)
	c.Assert(saw.IsActive, qt.IsTrue)
	c.Assert(saw.ProductImages, qt.HasLen, 1)
	c.Assert(saw.ProductImages[0].ImageURL, qt.Matches, `/images/products/.*\.png`)
	c.Assert(h.storedFiles(t), qt.HasLen, 1)
	c.Assert(promtest.ToFloat64(h.metrics.ProductOperationsCounter.WithLabelValues("create")), qt.Equals, 1.0)
	c.Assert(promtest.ToFloat64(h.metrics.ImageUploadsCounter.WithLabelValues("success")), qt.Equals, 1.0)
}

func TestProductsCreateWithoutImage(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	fields := productFields(h, "Rake")
	delete(fields, "IsActive")
	rec := h.postForm(t, "/Products/Create", fields, "", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)

	products, err := h.store.Products.List(context.Background(), repository.ProductFilter{CategoryID: h.f.Tools.ID})
	c.Assert(err, qt.IsNil)
	c.Assert(products, qt.HasLen, 2)
	c.Assert(products[1].Name, qt.Equals, "Rake")
	c.Assert(products[1].IsActive, qt.IsFalse)
	c.Assert(products[1].ProductImages, qt.HasLen, 0)
}

func TestProductsCreateRerendersInvalidForm(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.postForm(t, "/Products/Create", map[string]string{
		"Name":       "",
		"Price":      "abc",
		"Stock":      "1",
		"CategoryID": "0",
		"CompanyID":  strconv.FormatUint(uint64(h.f.Acme.ID), 10),
	}, "", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)
	body := rec.Body.String()
	c.Assert(body, qt.Contains, "The Name field is required.")
	c.Assert(body, qt.Contains, "The field Price must be a number.")
	c.Assert(body, qt.Contains, "You must select a category.")
	// both combos are refilled
	c.Assert(body, qt.Contains, "(Select a category...)")
	c.Assert(body, qt.Contains, "Globex")
}

func TestProductsCreateRejectsUnstorablePrice(t *testing.T) {
	tests := []struct {
		price string
		msg   string
	}{
		{price: "1.999", msg: "The field Price must have at most 2 decimals."},
		{price: "12345678901234567890123.5", msg: "The field Price must have at most 2 decimals."},
		{price: "10000000000000000", msg: "The field Price must be less than 10000000000000000."},
		{price: "-0.01", msg: "The field Price must be greater than or equal to 0."},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			c := qt.New(t)
			h := newHarness(t)

			fields := productFields(h, "Saw")
			fields["Price"] = tt.price
			rec := h.postForm(t, "/Products/Create", fields, "", nil)
			c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)
			c.Assert(rec.Body.String(), qt.Contains, tt.msg)
			// the rejected text is kept in the form
			c.Assert(rec.Body.String(), qt.Contains, `value="`+tt.price+`"`)

			products, err := h.store.Products.List(context.Background(), repository.ProductFilter{})
			c.Assert(err, qt.IsNil)
			c.Assert(products, qt.HasLen, 2)
		})
	}
}

func TestProductsCreateDuplicate(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.postForm(t, "/Products/Create", productFields(h, "Hammer"), "hammer.png", testutil.PNG)
	c.Assert(rec.Code, qt.Equals, http.StatusConflict)
	c.Assert(rec.Body.String(), qt.Contains, DuplicateMessage)
	// the uploaded file is removed again
	c.Assert(h.storedFiles(t), qt.HasLen, 0)
}

func TestProductsCreateRejectsNonImage(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.postForm(t, "/Products/Create", productFields(h, "Saw"), "saw.png", []byte("plain text"))
	c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)
	c.Assert(rec.Body.String(), qt.Contains, "only JPEG, PNG, GIF and WEBP images are allowed")

	ok, err := h.store.Products.Exists(context.Background(), h.f.Shovel.ID+1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(promtest.ToFloat64(h.metrics.ImageUploadsCounter.WithLabelValues("error")), qt.Equals, 1.0)
}

func TestProductsCreateStorageFailure(t *testing.T) {
	c := qt.New(t)
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	store := repository.New(db)
	combos := helper.NewCombosHelper(store)

	h := &harness{e: echo.New(), db: db, f: f, store: store}
	renderer, err := view.NewRenderer("")
	c.Assert(err, qt.IsNil)
	h.e.Renderer = renderer
	NewProductsController(Deps{
		Store:     store,
		Images:    failingImages{},
		Combos:    combos,
		Converter: helper.NewConverterHelper(store, combos),
		Metrics:   newTestMetrics(),
		Folder:    "products",
	}).Register(h.e.Group("/Products"))

	rec := h.postForm(t, "/Products/Create", productFields(h, "Saw"), "saw.png", testutil.PNG)
	c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(rec.Body.String(), qt.Contains, "io: read/write on closed pipe")
}

func TestProductsEdit(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)
	target := fmt.Sprintf("/Products/Edit/%d", h.f.Hammer.ID)

	rec := h.do(http.MethodGet, target, nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Contains, `value="Hammer"`)
	c.Assert(rec.Body.String(), qt.Contains, `value="12.50"`)

	fields := productFields(h, "Claw Hammer")
	fields["CompanyID"] = strconv.FormatUint(uint64(h.f.Globex.ID), 10)
	delete(fields, "IsActive")
	rec = h.postForm(t, target, fields, "second.png", testutil.PNG)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(rec.Header().Get(echo.HeaderLocation), qt.Equals, "/Products")

	product, err := h.store.Products.Get(context.Background(), h.f.Hammer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(product.Name, qt.Equals, "Claw Hammer")
	c.Assert(product.CompanyID, qt.Equals, h.f.Globex.ID)
	c.Assert(product.IsActive, qt.IsFalse)
	c.Assert(product.ProductImages, qt.HasLen, 2)
	c.Assert(product.ProductImages[0].ImageURL, qt.Equals, "/images/products/hammer.png")
}

func TestProductsEditErrors(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/Products/Edit/9999", nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	rec = h.do(http.MethodGet, "/Products/Edit", nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	rec = h.postForm(t, "/Products/Edit/9999", productFields(h, "Ghost"), "", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	rec = h.postForm(t, fmt.Sprintf("/Products/Edit/%d", h.f.Shovel.ID), productFields(h, "Hammer"), "", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusConflict)
	body := rec.Body.String()
	c.Assert(body, qt.Contains, DuplicateMessage)
	c.Assert(body, qt.Contains, "(Select a company...)")
	c.Assert(body, qt.Contains, fmt.Sprintf(`action="/Products/Edit/%d"`, h.f.Shovel.ID))

	fields := productFields(h, "Spade")
	fields["CategoryID"] = "9999"
	rec = h.postForm(t, fmt.Sprintf("/Products/Edit/%d", h.f.Shovel.ID), fields, "", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)
	c.Assert(rec.Body.String(), qt.Contains, "The selected category or company does not exist.")
}

func TestProductsDelete(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)

	rec := h.postForm(t, fmt.Sprintf("/Products/AddImage/%d", h.f.Hammer.ID), nil, "extra.png", testutil.PNG)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(h.storedFiles(t), qt.HasLen, 1)

	rec = h.do(http.MethodPost, fmt.Sprintf("/Products/Delete/%d", h.f.Hammer.ID), nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(rec.Header().Get(echo.HeaderLocation), qt.Equals, "/Products")

	_, err := h.store.Products.Get(context.Background(), h.f.Hammer.ID)
	c.Assert(err, qt.ErrorIs, repository.ErrNotFound)
	c.Assert(h.storedFiles(t), qt.HasLen, 0)

	rec = h.do(http.MethodPost, fmt.Sprintf("/Products/Delete/%d", h.f.Hammer.ID), nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}

func TestProductsAddImage(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)
	target := fmt.Sprintf("/Products/AddImage/%d", h.f.Shovel.ID)

	rec := h.do(http.MethodGet, target, nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Contains, fmt.Sprintf(`name="ProductID" value="%d"`, h.f.Shovel.ID))

	rec = h.do(http.MethodGet, "/Products/AddImage/9999", nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	rec = h.postForm(t, target, map[string]string{"ProductID": "1"}, "", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)
	c.Assert(rec.Body.String(), qt.Contains, "The Image field is required.")

	rec = h.postForm(t, target, nil, "shovel.gif", []byte("GIF89a-shovel"))
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(rec.Header().Get(echo.HeaderLocation), qt.Equals, fmt.Sprintf("/Products/Details/%d", h.f.Shovel.ID))

	images, err := h.store.Products.ListImages(context.Background(), h.f.Shovel.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(images, qt.HasLen, 1)
	c.Assert(images[0].ImageURL, qt.Matches, `/images/products/.*\.gif`)

	rec = h.postForm(t, "/Products/AddImage/9999", nil, "x.png", testutil.PNG)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}

func TestProductsDeleteImage(t *testing.T) {
	c := qt.New(t)
	h := newHarness(t)
	imageID := h.f.Hammer.ProductImages[0].ID

	rec := h.do(http.MethodPost, fmt.Sprintf("/Products/DeleteImage/%d", imageID), nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(rec.Header().Get(echo.HeaderLocation), qt.Equals, fmt.Sprintf("/Products/Details/%d", h.f.Hammer.ID))

	images, err := h.store.Products.ListImages(context.Background(), h.f.Hammer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(images, qt.HasLen, 0)

	rec = h.do(http.MethodPost, fmt.Sprintf("/Products/DeleteImage/%d", imageID), nil, "")
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}
