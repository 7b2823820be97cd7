package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/homefinder/api/internal/errors"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// Multipart form fields accepted by Upload.
const (
	formProperty  = "property"
	formImage     = "image"
	formIsPrimary = "is_primary"
)

// ImageHandler handles property image uploads and deletions.
type ImageHandler struct {
	service services.ImageService
}

// NewImageHandler creates a new ImageHandler instance.
func NewImageHandler(service services.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

// Upload handles POST /api/v1/property-images (multipart/form-data).
func (h *ImageHandler) Upload(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.PostForm(formProperty), 10, 64)
	if err != nil || propertyID <= 0 {
		apierrors.ValidationFailed(c, "A valid property is required.", map[string]interface{}{
			formProperty: "Invalid pk - object does not exist.",
		})
		return
	}

	isPrimary := false
	if raw := c.PostForm(formIsPrimary); raw != "" {
		isPrimary, err = strconv.ParseBool(raw)
		if err != nil {
			apierrors.ValidationFailed(c, "Must be a valid boolean.", map[string]interface{}{
				formIsPrimary: "Must be a valid boolean.",
			})
			return
		}
	}

	header, err := c.FormFile(formImage)
	if err != nil {
		apierrors.ValidationFailed(c, "No file was submitted.", map[string]interface{}{
			formImage: "No file was submitted.",
		})
		return
	}
	file, err := header.Open()
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read uploaded file", err)
		return
	}
	defer file.Close()

	img, err := h.service.Upload(c.Request.Context(), callerID(c), services.ImageUpload{
		PropertyID:  propertyID,
		Filename:    header.Filename,
		Content:     file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		IsPrimary:   isPrimary,
	})
	if err != nil {
		respondError(c, err, "Error creating property image")
		return
	}
	c.JSON(http.StatusCreated, img)
}

// Delete handles DELETE /api/v1/property-images/:id.
// Unexpected failures are reported as a generic 500.
func (h *ImageHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err, "Error deleting image")
		return
	}
	c.Status(http.StatusNoContent)
}
