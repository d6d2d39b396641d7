package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogcms/internal/model"
	"blogcms/internal/service"
)

// TagHandler handles tag endpoints.
type TagHandler struct {
	tagService service.TagService
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(tagService service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

type CreateTagRequest struct {
	Name     string `json:"name" validate:"required,max=30"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
	IsActive *bool  `json:"isActive"`
}

type UpdateTagRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=30"`
	Color    *string `json:"color" validate:"omitempty,hexcolor"`
	IsActive *bool   `json:"isActive"`
}

// List godoc
// @Summary List active tags
// @Tags tags
// @Produce json
// @Success 200 {object} Envelope{data=[]model.Tag}
// @Router /tags [get]
func (h *TagHandler) List(c echo.Context) error {
	tags, err := h.tagService.ListActive(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", tags)
}

// GetBySlug godoc
// @Summary Get an active tag
// @Tags tags
// @Produce json
// @Param slug path string true "Tag slug"
// @Success 200 {object} Envelope{data=model.Tag}
// @Failure 404 {object} errors.ErrorResponse
// @Router /tags/{slug} [get]
func (h *TagHandler) GetBySlug(c echo.Context) error {
	tag, err := h.tagService.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", tag)
}

// Create godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTagRequest true "Tag"
// @Success 201 {object} Envelope{data=model.Tag}
// @Failure 400 {object} errors.ErrorResponse
// @Router /tags [post]
func (h *TagHandler) Create(c echo.Context) error {
	var req CreateTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := h.tagService.Create(c.Request().Context(), &model.Tag{
		Name:     req.Name,
		Color:    req.Color,
		IsActive: req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusCreated, "Tag created successfully", tag)
}

// Update godoc
// @Summary Update a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Param request body UpdateTagRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.Tag}
// @Failure 404 {object} errors.ErrorResponse
// @Router /tags/{id} [put]
func (h *TagHandler) Update(c echo.Context) error {
	var req UpdateTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tag, err := h.tagService.Update(c.Request().Context(), c.Param("id"), model.TagPatch{
		Name:     req.Name,
		Color:    req.Color,
		IsActive: req.IsActive,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "Tag updated successfully", tag)
}

// Delete godoc
// @Summary Delete a tag
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tag ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} errors.ErrorResponse
// @Router /tags/{id} [delete]
func (h *TagHandler) Delete(c echo.Context) error {
	if err := h.tagService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "Tag deleted successfully", nil)
}
