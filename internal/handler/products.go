package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"catalog-service/internal/helper"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/internal/view"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductsController serves the server-rendered product pages
type ProductsController struct {
	Deps
}

func NewProductsController(d Deps) *ProductsController {
	return &ProductsController{Deps: d}
}

// Register mounts the controller actions on g, e.g. a group for /Products
func (h *ProductsController) Register(g *echo.Group) {
	g.GET("", h.Index)
	g.GET("/", h.Index)
	g.GET("/Index", h.Index)
	g.GET("/Details", h.Details)
	g.GET("/Details/:id", h.Details)
	g.GET("/Create", h.Create)
	g.POST("/Create", h.CreatePost)
	g.GET("/Edit", h.Edit)
	g.GET("/Edit/:id", h.Edit)
	g.POST("/Edit/:id", h.EditPost)
	g.POST("/Delete/:id", h.Delete)
	g.GET("/AddImage", h.AddImage)
	g.GET("/AddImage/:id", h.AddImage)
	g.POST("/AddImage/:id", h.AddImagePost)
	g.POST("/DeleteImage/:id", h.DeleteImage)
}

func (h *ProductsController) notFound(c echo.Context) error {
	return c.Render(http.StatusNotFound, view.Error, view.ErrorPage{
		Status:  http.StatusNotFound,
		Message: "The requested product or image was not found.",
	})
}

func (h *ProductsController) serverError(c echo.Context, err error) error {
	return c.Render(http.StatusInternalServerError, view.Error, view.ErrorPage{
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
	})
}

// Index lists every product with its category, company and images
func (h *ProductsController) Index(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	done := h.Metrics.TrackDBOperation("product_list")
	start := time.Now()
	products, err := h.Store.Products.List(ctx, repository.ProductFilter{})
	done(start)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return h.serverError(c, err)
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.Render(http.StatusOK, view.ProductsIndex, products)
}

// Details shows one product
func (h *ProductsController) Details(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		log.Warn("Missing or invalid product id", zap.String("id", c.Param("id")))
		return h.notFound(c)
	}

	product, err := h.Store.Products.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Product not found", zap.Uint("product_id", id))
		return h.notFound(c)
	}
	if err != nil {
		log.Error("Failed to get product", zap.Uint("product_id", id), zap.Error(err))
		return h.serverError(c, err)
	}

	h.Metrics.RecordProductView(product.ID, categoryName(product))
	return c.Render(http.StatusOK, view.ProductsDetails, product)
}

// Create shows an empty product form
func (h *ProductsController) Create(c echo.Context) error {
	vm := &model.ProductViewModel{IsActive: true}
	if err := h.fillCombos(c, vm); err != nil {
		return h.serverError(c, err)
	}
	return c.Render(http.StatusOK, view.ProductsCreate, vm)
}

// CreatePost validates the form, stores the optional image and inserts the product
func (h *ProductsController) CreatePost(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	vm := &model.ProductViewModel{}
	if err := bindProductForm(c, vm); err != nil {
		log.Warn("Invalid product form", zap.Error(err))
		return c.Render(http.StatusBadRequest, view.Error, view.ErrorPage{Status: http.StatusBadRequest, Message: "Invalid form data"})
	}
	if err := validateForm(vm, &vm.Errors); err != nil {
		return h.serverError(c, err)
	}

	status := http.StatusUnprocessableEntity
	if vm.Errors.IsValid() {
		product, err := h.toProduct(c, vm, true)
		var ref string
		if err == nil && vm.ImageFile != nil {
			ref, err = h.upload(c, vm.ImageFile)
			if err == nil {
				product.ProductImages = []model.ProductImage{{ImageURL: ref}}
			}
		}
		if err == nil {
			done := h.Metrics.TrackDBOperation("product_create")
			start := time.Now()
			err = h.Store.Products.Create(ctx, product)
			done(start)
		}
		if err == nil {
			log.Info("Product created successfully",
				zap.Uint("product_id", product.ID),
				zap.String("name", product.Name))
			h.Metrics.RecordProductOperation("create")
			h.Metrics.UpdateProductInventory(product.ID, product.Name, categoryName(product), float64(product.Stock))
			return c.Redirect(http.StatusSeeOther, "/Products")
		}

		h.discard(c, ref)
		log.Warn("Failed to create product", zap.String("name", vm.Name), zap.Error(err))
		status = saveError(&vm.Errors, err)
	} else {
		log.Info("Product form is invalid", zap.Any("errors", vm.Errors.Fields))
	}

	if err := h.fillCombos(c, vm); err != nil {
		return h.serverError(c, err)
	}
	return c.Render(status, view.ProductsCreate, vm)
}

// Edit shows the form of an existing product
func (h *ProductsController) Edit(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	id, ok := parseID(c, "id")
	if !ok {
		return h.notFound(c)
	}

	product, err := h.Store.Products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Product not found for edit", zap.Uint("product_id", id))
		return h.notFound(c)
	}
	if err != nil {
		return h.serverError(c, err)
	}

	vm, err := h.Converter.ToProductViewModel(ctx, product)
	if err != nil {
		return h.serverError(c, err)
	}
	return c.Render(http.StatusOK, view.ProductsEdit, vm)
}

// EditPost validates the form, appends the optional image and saves the product
func (h *ProductsController) EditPost(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	id, ok := parseID(c, "id")
	if !ok {
		return h.notFound(c)
	}

	exists, err := h.Store.Products.Exists(ctx, id)
	if err != nil {
		return h.serverError(c, err)
	}
	if !exists {
		log.Warn("Product not found for update", zap.Uint("product_id", id))
		return h.notFound(c)
	}
	images, err := h.Store.Products.ListImages(ctx, id)
	if err != nil {
		return h.serverError(c, err)
	}

	vm := &model.ProductViewModel{ID: id, ProductImages: images}
	if err := bindProductForm(c, vm); err != nil {
		log.Warn("Invalid product form", zap.Error(err))
		return c.Render(http.StatusBadRequest, view.Error, view.ErrorPage{Status: http.StatusBadRequest, Message: "Invalid form data"})
	}
	if err := validateForm(vm, &vm.Errors); err != nil {
		return h.serverError(c, err)
	}

	status := http.StatusUnprocessableEntity
	if vm.Errors.IsValid() {
		product, err := h.toProduct(c, vm, false)
		var ref string
		var added []model.ProductImage
		if err == nil && vm.ImageFile != nil {
			ref, err = h.upload(c, vm.ImageFile)
			if err == nil {
				added = append(added, model.ProductImage{ImageURL: ref})
			}
		}
		if err == nil {
			done := h.Metrics.TrackDBOperation("product_update")
			start := time.Now()
			err = h.Store.Products.Update(ctx, product, added...)
			done(start)
		}
		if err == nil {
			log.Info("Product updated successfully",
				zap.Uint("product_id", product.ID),
				zap.String("name", product.Name),
				zap.Int("new_images", len(added)))
			h.Metrics.RecordProductOperation("update")
			h.Metrics.UpdateProductInventory(product.ID, product.Name, categoryName(product), float64(product.Stock))
			return c.Redirect(http.StatusSeeOther, "/Products")
		}

		h.discard(c, ref)
		if errors.Is(err, repository.ErrNotFound) {
			// deleted while the form was being posted
			return h.notFound(c)
		}
		log.Warn("Failed to update product", zap.Uint("product_id", id), zap.Error(err))
		status = saveError(&vm.Errors, err)
	}

	if err := h.fillCombos(c, vm); err != nil {
		return h.serverError(c, err)
	}
	return c.Render(status, view.ProductsEdit, vm)
}

// Delete removes the product, its image rows and their stored files
func (h *ProductsController) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	id, ok := parseID(c, "id")
	if !ok {
		return h.notFound(c)
	}

	done := h.Metrics.TrackDBOperation("product_delete")
	start := time.Now()
	images, err := h.Store.Products.Delete(ctx, id)
	done(start)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Product not found for delete", zap.Uint("product_id", id))
		return h.notFound(c)
	}
	if err != nil {
		log.Error("Failed to delete product", zap.Uint("product_id", id), zap.Error(err))
		return h.serverError(c, err)
	}

	for _, img := range images {
		h.discard(c, img.ImageURL)
	}
	h.Metrics.RecordProductOperation("delete")
	h.Metrics.DeleteProductInventory(id)
	log.Info("Product deleted successfully", zap.Uint("product_id", id), zap.Int("images", len(images)))
	return c.Redirect(http.StatusSeeOther, "/Products")
}

// AddImage shows the upload form for a product
func (h *ProductsController) AddImage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.notFound(c)
	}

	exists, err := h.Store.Products.Exists(c.Request().Context(), id)
	if err != nil {
		return h.serverError(c, err)
	}
	if !exists {
		return h.notFound(c)
	}
	return c.Render(http.StatusOK, view.ProductsAddImage, &model.AddProductImageViewModel{ProductID: id})
}

// AddImagePost stores the uploaded file and attaches it to the product
func (h *ProductsController) AddImagePost(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	id, ok := parseID(c, "id")
	if !ok {
		return h.notFound(c)
	}

	exists, err := h.Store.Products.Exists(ctx, id)
	if err != nil {
		return h.serverError(c, err)
	}
	if !exists {
		log.Warn("Product not found for image upload", zap.Uint("product_id", id))
		return h.notFound(c)
	}

	vm := &model.AddProductImageViewModel{ProductID: id}
	vm.ImageFile, err = formFile(c, "ImageFile")
	if err != nil {
		log.Warn("Invalid image form", zap.Error(err))
		return c.Render(http.StatusBadRequest, view.Error, view.ErrorPage{Status: http.StatusBadRequest, Message: "Invalid form data"})
	}
	if err := validateForm(vm, &vm.Errors); err != nil {
		return h.serverError(c, err)
	}
	if !vm.Errors.IsValid() {
		return c.Render(http.StatusUnprocessableEntity, view.ProductsAddImage, vm)
	}

	ref, err := h.upload(c, vm.ImageFile)
	if err == nil {
		_, err = h.Store.Products.AddImage(ctx, id, ref)
	}
	if err != nil {
		h.discard(c, ref)
		log.Warn("Failed to add product image", zap.Uint("product_id", id), zap.Error(err))
		status := saveError(&vm.Errors, err)
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c)
		}
		return c.Render(status, view.ProductsAddImage, vm)
	}

	log.Info("Product image added", zap.Uint("product_id", id), zap.String("image_url", ref))
	h.Metrics.RecordProductOperation("add_image")
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/Products/Details/%d", id))
}

// DeleteImage removes one image and returns to the owning product
func (h *ProductsController) DeleteImage(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return h.notFound(c)
	}

	image, err := h.Store.Products.DeleteImage(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Product image not found", zap.Uint("image_id", id))
		return h.notFound(c)
	}
	if err != nil {
		log.Error("Failed to delete product image", zap.Uint("image_id", id), zap.Error(err))
		return h.serverError(c, err)
	}

	h.discard(c, image.ImageURL)
	h.Metrics.RecordProductOperation("delete_image")
	log.Info("Product image deleted", zap.Uint("image_id", id), zap.Uint("product_id", image.ProductID))
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/Products/Details/%d", image.ProductID))
}

func (h *ProductsController) fillCombos(c echo.Context, vm *model.ProductViewModel) error {
	ctx := c.Request().Context()
	var err error
	if vm.Categories, err = h.Combos.ComboCategories(ctx); err != nil {
		logger.FromContext(c).Error("Failed to load categories", zap.Error(err))
		return err
	}
	if vm.Companies, err = h.Combos.ComboCompanies(ctx); err != nil {
		logger.FromContext(c).Error("Failed to load companies", zap.Error(err))
		return err
	}
	return nil
}

// toProduct converts the form; a category or company that no longer exists becomes
// errMissingReference so it is not mistaken for a missing product
func (h *Deps) toProduct(c echo.Context, vm *model.ProductViewModel, isNew bool) (*model.Product, error) {
	product, err := h.Converter.ToProduct(c.Request().Context(), vm, isNew)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", errMissingReference, err)
	}
	return product, err
}

// upload stores file in the product image folder and counts the outcome
func (h *Deps) upload(c echo.Context, file *multipart.FileHeader) (string, error) {
	ref, err := h.Images.UploadImage(c.Request().Context(), file, h.Folder)
	if err != nil {
		h.Metrics.RecordImageUpload("error")
		return "", err
	}
	h.Metrics.RecordImageUpload("success")
	return ref, nil
}

// discard removes a stored image whose row is gone or was never written. Failures are logged only.
func (h *Deps) discard(c echo.Context, ref string) {
	if ref == "" {
		return
	}
	if err := h.Images.RemoveImage(c.Request().Context(), ref); err != nil {
		logger.FromContext(c).Warn("Failed to remove stored image", zap.String("image_url", ref), zap.Error(err))
	}
}

// saveError records err on the form and returns the status the form is re-rendered with
func saveError(errs *model.FormErrors, err error) int {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		errs.Add("", DuplicateMessage)
		return http.StatusConflict
	case errors.Is(err, helper.ErrInvalidImage), errors.Is(err, helper.ErrImageTooLarge), errors.Is(err, helper.ErrNoImage):
		errs.Add("ImageFile", err.Error())
		return http.StatusUnprocessableEntity
	case errors.Is(err, errMissingReference):
		errs.Add("", "The selected category or company does not exist.")
		return http.StatusUnprocessableEntity
	default:
		errs.Add("", err.Error())
		return http.StatusInternalServerError
	}
}
