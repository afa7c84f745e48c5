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

// CompanyRequest defines the structure for company creation/update requests
type CompanyRequest struct {
	Name string `json:"name" validate:"required,max=50" display:"Name"`
}

// ListCompanies retrieves all companies
func (h *API) ListCompanies(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing companies")

	companies, err := h.Store.Companies.List(c.Request().Context())
	if err != nil {
		log.Error("Failed to retrieve companies", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve companies")
	}

	log.Info("Companies retrieved successfully", zap.Int("count", len(companies)))
	return c.JSON(http.StatusOK, companies)
}

// GetCompany retrieves a specific company by ID
func (h *API) GetCompany(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid company ID")
	}

	company, err := h.Store.Companies.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Company not found", zap.Uint("company_id", id))
		return jsonError(c, http.StatusNotFound, "Company not found")
	}
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve company")
	}
	return c.JSON(http.StatusOK, company)
}

// CreateCompany registers a new company
func (h *API) CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new company")

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Invalid request data")
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg, ok := validationError(&req); !ok {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	company := &model.Company{Name: req.Name}
	err := h.Store.Companies.Create(c.Request().Context(), company)
	if errors.Is(err, repository.ErrDuplicate) {
		log.Warn("Company with this name already exists", zap.String("name", req.Name))
		return jsonError(c, http.StatusConflict, DuplicateMessage)
	}
	if err != nil {
		log.Error("Failed to create company", zap.String("name", req.Name), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to create company")
	}

	h.Metrics.RecordCompanyOperation("create")
	log.Info("Company created successfully",
		zap.Uint("company_id", company.ID),
		zap.String("name", company.Name))
	return c.JSON(http.StatusCreated, company)
}

// UpdateCompany renames a company
func (h *API) UpdateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid company ID")
	}

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("company_id", id), zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Invalid request data")
	}
	req.Name = strings.TrimSpace(req.Name)
	if msg, ok := validationError(&req); !ok {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	company := &model.Company{ID: id, Name: req.Name}
	err := h.Store.Companies.Update(c.Request().Context(), company)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "Company not found")
	case errors.Is(err, repository.ErrDuplicate):
		return jsonError(c, http.StatusConflict, DuplicateMessage)
	case err != nil:
		log.Error("Failed to update company", zap.Uint("company_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to update company")
	}

	h.Metrics.RecordCompanyOperation("update")
	log.Info("Company updated successfully", zap.Uint("company_id", id), zap.String("name", company.Name))
	return c.JSON(http.StatusOK, company)
}

// DeleteCompany deletes a company that owns no products
func (h *API) DeleteCompany(c echo.Context) error {
	log := logger.FromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid company ID")
	}

	err := h.Store.Companies.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "Company not found")
	case errors.Is(err, repository.ErrInUse):
		log.Warn("Cannot delete company that is being used by products", zap.Uint("company_id", id))
		return jsonError(c, http.StatusConflict, "Cannot delete company that is being used by products")
	case err != nil:
		log.Error("Failed to delete company", zap.Uint("company_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to delete company")
	}

	h.Metrics.RecordCompanyOperation("delete")
	log.Info("Company deleted successfully", zap.Uint("company_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Company deleted successfully"})
}
