package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/homefinder/api/internal/middleware"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// PropertyHandler handles listing HTTP requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// PropertyRequest is the body of POST and PUT. Every writable field must be
// present except the optional description, coordinates and status.
type PropertyRequest struct {
	Title          *string                `json:"title" binding:"required,max=200"`
	Description    *string                `json:"description"`
	Price          *float64               `json:"price" binding:"required,gte=0,lte=9999999999.99"`
	ListingType    *models.ListingType    `json:"listing_type" binding:"required,oneof=rent sale"`
	PropertyTypeID *int64                 `json:"property_type_id" binding:"required,gt=0"`
	Bedrooms       *int                   `json:"bedrooms" binding:"required,gte=0"`
	Bathrooms      *int                   `json:"bathrooms" binding:"required,gte=0"`
	SquareFeet     *int                   `json:"square_feet" binding:"required,gte=0"`
	Address        *string                `json:"address" binding:"required,max=255"`
	City           *string                `json:"city" binding:"required,max=100"`
	State          *string                `json:"state" binding:"required,max=100"`
	ZipCode        *string                `json:"zip_code" binding:"required,max=20"`
	Latitude       *float64               `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude      *float64               `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Status         *models.PropertyStatus `json:"status" binding:"omitempty,oneof=available pending sold"`
}

// PropertyPatchRequest is the body of PATCH; absent fields are left unchanged.
type PropertyPatchRequest struct {
	Title          *string                `json:"title" binding:"omitempty,max=200"`
	Description    *string                `json:"description"`
	Price          *float64               `json:"price" binding:"omitempty,gte=0,lte=9999999999.99"`
	ListingType    *models.ListingType    `json:"listing_type" binding:"omitempty,oneof=rent sale"`
	PropertyTypeID *int64                 `json:"property_type_id" binding:"omitempty,gt=0"`
	Bedrooms       *int                   `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms      *int                   `json:"bathrooms" binding:"omitempty,gte=0"`
	SquareFeet     *int                   `json:"square_feet" binding:"omitempty,gte=0"`
	Address        *string                `json:"address" binding:"omitempty,max=255"`
	City           *string                `json:"city" binding:"omitempty,max=100"`
	State          *string                `json:"state" binding:"omitempty,max=100"`
	ZipCode        *string                `json:"zip_code" binding:"omitempty,max=20"`
	Latitude       *float64               `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude      *float64               `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Status         *models.PropertyStatus `json:"status" binding:"omitempty,oneof=available pending sold"`
}

// List handles GET /api/v1/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	props, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, err, "Failed to list properties")
		return
	}
	c.JSON(http.StatusOK, props)
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to query property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /api/v1/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), callerID(c), req.input())
	if err != nil {
		respondError(c, err, "Failed to create property")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Property listed", map[string]interface{}{"property_id": p.ID})
	}
	c.JSON(http.StatusCreated, p)
}

// Replace handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) Replace(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	h.update(c, id, req.input())
}

// Patch handles PATCH /api/v1/properties/:id.
func (h *PropertyHandler) Patch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req PropertyPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	h.update(c, id, services.PropertyInput(req))
}

func (h *PropertyHandler) update(c *gin.Context, id int64, in services.PropertyInput) {
	p, err := h.service.Update(c.Request.Context(), callerID(c), id, in)
	if err != nil {
		respondError(c, err, "Failed to update property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/v1/properties/:id.
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err, "Failed to delete property")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r PropertyRequest) input() services.PropertyInput {
	return services.PropertyInput{
		Title:          r.Title,
		Description:    r.Description,
		Price:          r.Price,
		ListingType:    r.ListingType,
		PropertyTypeID: r.PropertyTypeID,
		Bedrooms:       r.Bedrooms,
		Bathrooms:      r.Bathrooms,
		SquareFeet:     r.SquareFeet,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Status:         r.Status,
	}
}
