package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blogcms/internal/errors"
	"blogcms/internal/service"
)

// UploadField is the multipart field carrying the image.
const UploadField = "image"

// UploadHandler handles standalone image uploads.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadResponse describes a stored file.
type UploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimetype"`
}

// Upload godoc
// @Summary Upload an image
// @Description JPEG, PNG, WebP or GIF up to 5 MB. The type is detected from the file content.
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	file, err := optionalFile(c, UploadField)
	if err != nil {
		return err
	}
	if file == nil {
		return fail(apperrors.Validation("no file uploaded",
			apperrors.FieldError{Field: UploadField, Message: "file is required"}))
	}

	obj, err := h.uploadService.SaveImage(c.Request().Context(), UploadField, file)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, UploadResponse{
		Success:  true,
		URL:      obj.URL,
		Filename: obj.Filename,
		Size:     obj.Size,
		MimeType: obj.ContentType,
	})
}
