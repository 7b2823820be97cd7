package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/homefinder/api/internal/errors"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// ReviewHandler handles property reviews.
type ReviewHandler struct {
	service services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler instance.
func NewReviewHandler(service services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// ReviewRequest is the body of POST /reviews. The reviewer is always the caller.
type ReviewRequest struct {
	Property int64 `json:"property" binding:"required,gt=0"`
	Rating   *int  `json:"rating" binding:"required"`
}

// List handles GET /api/v1/reviews with an optional ?property= filter.
func (h *ReviewHandler) List(c *gin.Context) {
	var propertyID *int64
	if raw := c.Query("property"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid property filter", map[string]interface{}{"property": raw})
			return
		}
		propertyID = &id
	}

	reviews, err := h.service.List(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err, "Failed to list reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// Get handles GET /api/v1/reviews/:id.
func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to query review")
		return
	}
	c.JSON(http.StatusOK, r)
}

// Create handles POST /api/v1/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), callerID(c), req.Property, *req.Rating)
	if err != nil {
		respondError(c, err, "Failed to create review")
		return
	}
	c.JSON(http.StatusCreated, r)
}
