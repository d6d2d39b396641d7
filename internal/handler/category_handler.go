package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogcms/internal/model"
	"blogcms/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents a category creation request.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon" validate:"max=50"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateCategoryRequest represents a partial category update.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
	IsActive    *bool   `json:"isActive"`
}

// List godoc
// @Summary List active categories
// @Tags categories
// @Produce json
// @Success 200 {object} Envelope{data=[]model.Category}
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categoryService.ListActive(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", categories)
}

// GetBySlug godoc
// @Summary Get an active category
// @Tags categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} Envelope{data=model.Category}
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{slug} [get]
func (h *CategoryHandler) GetBySlug(c echo.Context) error {
	category, err := h.categoryService.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", category)
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} Envelope{data=model.Category}
// @Failure 400 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.Create(c.Request().Context(), &model.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusCreated, "Category created successfully", category)
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.Category}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	var req UpdateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.Update(c.Request().Context(), c.Param("id"), model.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "Category updated successfully", category)
}

// Delete godoc
// @Summary Delete a category
// @Description Posts in the category are kept and detached from it.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.categoryService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "Category deleted successfully", nil)
}
