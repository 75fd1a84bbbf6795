package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "naijatax/internal/errors"
	"naijatax/internal/models"
	"naijatax/internal/pagination"
	"naijatax/internal/services"
	"naijatax/internal/taxengine"
)

// CategoryHandler handles the per-company category catalogue.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	activityService services.ActivityServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, activityService services.ActivityServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, activityService: activityService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name          string              `json:"name" binding:"required,max=100"`
	Type          models.CategoryType `json:"type" binding:"required,category_type"`
	DefaultTaxTag taxengine.TaxTag    `json:"default_tax_tag" binding:"omitempty,tax_tag"`
	Description   string              `json:"description" binding:"max=500"`
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Add a category to a company. Transactions filed under it inherit its default tax tag.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Company ID"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Failure     409 {object} ErrorResponse "Duplicate category name"
// @Router      /companies/{id}/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	companyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(userID, companyID, req.Name, req.Type, req.DefaultTaxTag, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]any{"company_id": companyID, "name": category.Name})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategories lists a company's categories
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Company ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Company not found"
// @Router      /companies/{id}/categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	companyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.categoryService.GetCompanyCategories(userID, companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteCategory removes an unused category
// @Summary     Delete a category
// @Description Delete a category. Categories still referenced by transactions cannot be deleted.
// @Tags        categories
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     204 "Category deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category in use"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "DELETE_CATEGORY", "category", categoryID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
