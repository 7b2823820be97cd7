package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// PropertyTypeHandler serves the property type catalogue.
type PropertyTypeHandler struct {
	service services.PropertyTypeService
}

// NewPropertyTypeHandler creates a new PropertyTypeHandler instance.
func NewPropertyTypeHandler(service services.PropertyTypeService) *PropertyTypeHandler {
	return &PropertyTypeHandler{service: service}
}

// List handles GET /api/v1/property-types.
func (h *PropertyTypeHandler) List(c *gin.Context) {
	types, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list property types")
		return
	}
	c.JSON(http.StatusOK, types)
}
