// Package view renders the server-side HTML pages of the catalog.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"catalog-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

//go:embed templates
var FS embed.FS

// Page names accepted by Renderer.Render
const (
	ProductsIndex    = "products/index"
	ProductsDetails  = "products/details"
	ProductsCreate   = "products/create"
	ProductsEdit     = "products/edit"
	ProductsAddImage = "products/add_image"
	Error            = "error"
)

var pages = map[string]struct {
	file  string
	title string
}{
	ProductsIndex:    {"templates/products/index.html", "Products"},
	ProductsDetails:  {"templates/products/details.html", "Product Details"},
	ProductsCreate:   {"templates/products/form.html", "Create Product"},
	ProductsEdit:     {"templates/products/form.html", "Edit Product"},
	ProductsAddImage: {"templates/products/add_image.html", "Add Image"},
	Error:            {"templates/error.html", "Error"},
}

// ErrorPage is the data of the Error page
type ErrorPage struct {
	Status  int
	Message string
}

// page is what every template receives as its root
type page struct {
	Name  string
	Title string
	CSRF  string
	Data  interface{}
}

// Renderer implements echo.Renderer over the embedded templates
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every page once. Image references are resolved against imageBaseURL.
func NewRenderer(imageBaseURL string) (*Renderer, error) {
	return newRenderer(FS, imageBaseURL)
}

func newRenderer(fsys fs.FS, imageBaseURL string) (*Renderer, error) {
	funcs := template.FuncMap{
		"imageURL": func(img model.ProductImage) string { return img.FullPath(imageBaseURL) },
		"price":    func(d decimal.Decimal) string { return d.StringFixed(2) },
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for name, p := range pages {
		t, err := template.New("layout").Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/partials.html", p.file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render executes the named page inside the layout
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	csrf, _ := c.Get("csrf").(string)
	return t.ExecuteTemplate(w, "layout", page{
		Name:  name,
		Title: pages[name].title,
		CSRF:  csrf,
		Data:  data,
	})
}
