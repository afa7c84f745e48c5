package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog-service/internal/helper"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// API serves the JSON endpoints below /api
type API struct {
	Deps
}

func NewAPI(d Deps) *API {
	return &API{Deps: d}
}

// Register mounts the JSON routes on g
func (h *API) Register(g *echo.Group) {
	g.GET("/products", h.ListProducts)
	g.POST("/products", h.CreateProduct)
	g.GET("/products/:id", h.GetProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
	g.GET("/products/:id/images", h.ListProductImages)
	g.POST("/products/:id/images", h.UploadProductImage)
	g.DELETE("/products/:id/images/:imageId", h.DeleteProductImage)

	g.GET("/categories", h.ListCategories)
	g.POST("/categories", h.CreateCategory)
	g.GET("/categories/:id", h.GetCategory)
	g.PUT("/categories/:id", h.UpdateCategory)
	g.DELETE("/categories/:id", h.DeleteCategory)

	g.GET("/companies", h.ListCompanies)
	g.POST("/companies", h.CreateCompany)
	g.GET("/companies/:id", h.GetCompany)
	g.PUT("/companies/:id", h.UpdateCompany)
	g.DELETE("/companies/:id", h.DeleteCompany)
}

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name       string          `json:"name" validate:"required,max=50" display:"Name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock" validate:"gte=0" display:"Stock"`
	IsActive   *bool           `json:"is_active"`
	CategoryID uint            `json:"category_id" validate:"required" display:"Category"`
	CompanyID  uint            `json:"company_id" validate:"required" display:"Company"`
}

// validationError flattens the struct rule violations of req into one message
func validationError(req interface{}) (string, bool) {
	var errs model.FormErrors
	if err := validateForm(req, &errs); err != nil {
		return err.Error(), false
	}
	if errs.IsValid() {
		return "", true
	}

	var msgs []string
	for _, field := range sortedKeys(errs.Fields) {
		msgs = append(msgs, errs.Fields[field]...)
	}
	return strings.Join(msgs, " "), false
}

func (r *ProductRequest) validate() (string, bool) {
	if msg, ok := validationError(r); !ok {
		return msg, false
	}
	if msg := priceMessage(r.Price); msg != "" {
		return msg, false
	}
	return "", true
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// ListProducts handles retrieving all products with optional filtering
func (h *API) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing products with filters")

	var filter repository.ProductFilter

	// Filter by active status if specified
	if isActive := c.QueryParam("is_active"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err == nil {
			filter.IsActive = &active
			log.Info("Filtering products by active status", zap.Bool("is_active", active))
		} else {
			log.Warn("Invalid is_active parameter", zap.String("value", isActive), zap.Error(err))
		}
	}

	for param, target := range map[string]*uint{
		"category_id": &filter.CategoryID,
		"company_id":  &filter.CompanyID,
	} {
		raw := c.QueryParam(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Warn("Invalid filter parameter", zap.String("param", param), zap.String("value", raw))
			return jsonError(c, http.StatusBadRequest, "Invalid "+param)
		}
		*target = uint(id)
	}

	done := h.Metrics.TrackDBOperation("product_list")
	start := time.Now()
	products, err := h.Store.Products.List(c.Request().Context(), filter)
	done(start)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve products")
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by ID
func (h *API) GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	product, err := h.Store.Products.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Product not found", zap.Uint("product_id", id))
		return jsonError(c, http.StatusNotFound, "Product not found")
	}
	if err != nil {
		log.Error("Failed to get product", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve product")
	}

	h.Metrics.RecordProductView(product.ID, categoryName(product))
	log.Info("Product retrieved successfully",
		zap.Uint("product_id", id),
		zap.String("product_name", product.Name))
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product
func (h *API) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new product")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Invalid request data")
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg, ok := req.validate(); !ok {
		log.Warn("Product validation failed", zap.String("reason", msg))
		return jsonError(c, http.StatusBadRequest, msg)
	}

	product := &model.Product{
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		IsActive:   req.IsActive == nil || *req.IsActive,
		CategoryID: req.CategoryID,
		CompanyID:  req.CompanyID,
	}
	if status, msg := h.checkReferences(c, product); status != 0 {
		return jsonError(c, status, msg)
	}

	done := h.Metrics.TrackDBOperation("product_create")
	start := time.Now()
	err := h.Store.Products.Create(c.Request().Context(), product)
	done(start)
	if errors.Is(err, repository.ErrDuplicate) {
		log.Warn("Product with this name already exists", zap.String("name", product.Name))
		return jsonError(c, http.StatusConflict, DuplicateMessage)
	}
	if err != nil {
		log.Error("Failed to create product", zap.String("name", product.Name), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to create product")
	}

	h.Metrics.RecordProductOperation("create")
	h.Metrics.UpdateProductInventory(product.ID, product.Name, categoryName(product), float64(product.Stock))
	fields := []zap.Field{zap.Uint("product_id", product.ID), zap.String("name", product.Name)}
	if user, ok := mid.GetUserFromContext(c); ok {
		fields = append(fields, zap.String("created_by", user.Email))
	}
	log.Info("Product created successfully", fields...)
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product
func (h *API) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}
	log.Info("Updating product", zap.Uint("product_id", id))

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Invalid request data")
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg, ok := req.validate(); !ok {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx := c.Request().Context()
	existing, err := h.Store.Products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Product not found for update", zap.Uint("product_id", id))
		return jsonError(c, http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve product")
	}

	product := &model.Product{
		ID:            id,
		Name:          req.Name,
		Price:         req.Price,
		Stock:         req.Stock,
		IsActive:      existing.IsActive,
		CategoryID:    req.CategoryID,
		CompanyID:     req.CompanyID,
		ProductImages: existing.ProductImages,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if status, msg := h.checkReferences(c, product); status != 0 {
		return jsonError(c, status, msg)
	}

	done := h.Metrics.TrackDBOperation("product_update")
	start := time.Now()
	err = h.Store.Products.Update(ctx, product)
	done(start)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		log.Warn("Product with this name already exists", zap.String("name", product.Name))
		return jsonError(c, http.StatusConflict, DuplicateMessage)
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "Product not found")
	case err != nil:
		log.Error("Failed to update product", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to update product")
	}

	h.Metrics.RecordProductOperation("update")
	h.Metrics.UpdateProductInventory(product.ID, product.Name, categoryName(product), float64(product.Stock))
	log.Info("Product updated successfully",
		zap.Uint("product_id", id),
		zap.String("old_name", existing.Name),
		zap.String("new_name", product.Name),
		zap.String("old_price", existing.Price.String()),
		zap.String("new_price", product.Price.String()))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product with its images
func (h *API) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	done := h.Metrics.TrackDBOperation("product_delete")
	start := time.Now()
	images, err := h.Store.Products.Delete(c.Request().Context(), id)
	done(start)
	if errors.Is(err, repository.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Product not found")
	}
	if err != nil {
		log.Error("Failed to delete product", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to delete product")
	}

	for _, img := range images {
		h.discard(c, img.ImageURL)
	}
	h.Metrics.RecordProductOperation("delete")
	h.Metrics.DeleteProductInventory(id)
	log.Info("Product deleted successfully", zap.Uint("product_id", id), zap.Int("images", len(images)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

// ListProductImages returns the images of a product
func (h *API) ListProductImages(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	ctx := c.Request().Context()
	exists, err := h.Store.Products.Exists(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve product")
	}
	if !exists {
		return jsonError(c, http.StatusNotFound, "Product not found")
	}

	images, err := h.Store.Products.ListImages(ctx, id)
	if err != nil {
		logger.FromContext(c).Error("Failed to list product images", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve product images")
	}
	return c.JSON(http.StatusOK, images)
}

// UploadProductImage attaches the multipart "image" file to a product
func (h *API) UploadProductImage(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	ctx := c.Request().Context()
	exists, err := h.Store.Products.Exists(ctx, id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve product")
	}
	if !exists {
		return jsonError(c, http.StatusNotFound, "Product not found")
	}

	file, err := formFile(c, "image")
	if err != nil || file == nil {
		return jsonError(c, http.StatusBadRequest, "An image file is required in the \"image\" field")
	}

	ref, err := h.upload(c, file)
	if errors.Is(err, helper.ErrInvalidImage) || errors.Is(err, helper.ErrImageTooLarge) {
		log.Warn("Rejected product image", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		log.Error("Failed to store product image", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to upload image")
	}

	image, err := h.Store.Products.AddImage(ctx, id, ref)
	if err != nil {
		h.discard(c, ref)
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Product not found")
		}
		log.Error("Failed to save product image", zap.Uint("product_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to save image")
	}

	h.Metrics.RecordProductOperation("add_image")
	log.Info("Product image added", zap.Uint("product_id", id), zap.Uint("image_id", image.ID))
	return c.JSON(http.StatusCreated, image)
}

// DeleteProductImage removes one image of a product
func (h *API) DeleteProductImage(c echo.Context) error {
	log := logger.FromContext(c)
	productID, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}
	imageID, ok := parseID(c, "imageId")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid image ID")
	}

	ctx := c.Request().Context()
	image, err := h.Store.Products.GetImage(ctx, imageID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && image.ProductID != productID) {
		return jsonError(c, http.StatusNotFound, "Image not found")
	}
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve image")
	}

	if _, err := h.Store.Products.DeleteImage(ctx, imageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Image not found")
		}
		log.Error("Failed to delete product image", zap.Uint("image_id", imageID), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to delete image")
	}

	h.discard(c, image.ImageURL)
	h.Metrics.RecordProductOperation("delete_image")
	log.Info("Product image deleted", zap.Uint("image_id", imageID), zap.Uint("product_id", productID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Image deleted successfully"})
}

// checkReferences loads the category and company of product; a non-zero status means one is missing
func (h *API) checkReferences(c echo.Context, product *model.Product) (int, string) {
	ctx := c.Request().Context()

	category, err := h.Store.Categories.Get(ctx, product.CategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusBadRequest, "Category not found"
	}
	if err != nil {
		return http.StatusInternalServerError, "Failed to retrieve category"
	}
	company, err := h.Store.Companies.Get(ctx, product.CompanyID)
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusBadRequest, "Company not found"
	}
	if err != nil {
		return http.StatusInternalServerError, "Failed to retrieve company"
	}

	product.Category = category
	product.Company = company
	return 0, ""
}
