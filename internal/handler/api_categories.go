package handler

import (
	"errors"
	"net/http"
	"strings"

	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=50" display:"Name"`
}

// ListCategories retrieves all product categories
func (h *API) ListCategories(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing categories")

	categories, err := h.Store.Categories.List(c.Request().Context())
	if err != nil {
		log.Error("Failed to retrieve categories", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve categories")
	}

	log.Info("Categories retrieved successfully", zap.Int("count", len(categories)))
	return c.JSON(http.StatusOK, categories)
}

// GetCategory retrieves a specific category by ID
func (h *API) GetCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid category ID")
	}

	category, err := h.Store.Categories.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Category not found", zap.Uint("category_id", id))
		return jsonError(c, http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve category")
	}
	return c.JSON(http.StatusOK, category)
}

// CreateCategory adds a new product category
func (h *API) CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new category")

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Invalid request data")
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg, ok := validationError(&req); !ok {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	category := &model.Category{Name: req.Name}
	err := h.Store.Categories.Create(c.Request().Context(), category)
	if errors.Is(err, repository.ErrDuplicate) {
		log.Warn("Category with this name already exists", zap.String("name", req.Name))
		return jsonError(c, http.StatusConflict, DuplicateMessage)
	}
	if err != nil {
		log.Error("Failed to create category", zap.String("name", req.Name), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to create category")
	}

	h.Metrics.RecordCategoryOperation("create")
	log.Info("Category created successfully",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames a category
func (h *API) UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid category ID")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("category_id", id), zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Invalid request data")
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg, ok := validationError(&req); !ok {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	category := &model.Category{ID: id, Name: req.Name}
	err := h.Store.Categories.Update(c.Request().Context(), category)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "Category not found")
	case errors.Is(err, repository.ErrDuplicate):
		return jsonError(c, http.StatusConflict, DuplicateMessage)
	case err != nil:
		log.Error("Failed to update category", zap.Uint("category_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to update category")
	}

	h.Metrics.RecordCategoryOperation("update")
	log.Info("Category updated successfully", zap.Uint("category_id", id), zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category no product uses
func (h *API) DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid category ID")
	}

	err := h.Store.Categories.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "Category not found")
	case errors.Is(err, repository.ErrInUse):
		log.Warn("Cannot delete category that is being used by products", zap.Uint("category_id", id))
		return jsonError(c, http.StatusConflict, "Cannot delete category that is being used by products")
	case err != nil:
		log.Error("Failed to delete category", zap.Uint("category_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to delete category")
	}

	h.Metrics.RecordCategoryOperation("delete")
	log.Info("Category deleted successfully", zap.Uint("category_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}
