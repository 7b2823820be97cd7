package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// FavoriteHandler handles the authenticated user's favorites.
type FavoriteHandler struct {
	service services.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler instance.
func NewFavoriteHandler(service services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// FavoriteRequest is the body of POST /favorites.
type FavoriteRequest struct {
	Property int64 `json:"property" binding:"required,gt=0"`
}

// List handles GET /api/v1/favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	favs, err := h.service.List(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err, "Failed to list favorites")
		return
	}
	c.JSON(http.StatusOK, favs)
}

// Get handles GET /api/v1/favorites/:id.
func (h *FavoriteHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	fav, err := h.service.Get(c.Request.Context(), callerID(c), id)
	if err != nil {
		respondError(c, err, "Failed to query favorite")
		return
	}
	c.JSON(http.StatusOK, fav)
}

// Create handles POST /api/v1/favorites.
func (h *FavoriteHandler) Create(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fav, err := h.service.Create(c.Request.Context(), callerID(c), req.Property)
	if err != nil {
		respondError(c, err, "Failed to create favorite")
		return
	}
	c.JSON(http.StatusCreated, fav)
}

// Delete handles DELETE /api/v1/favorites/:id.
func (h *FavoriteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), callerID(c), id); err != nil {
		respondError(c, err, "Failed to delete favorite")
		return
	}
	c.Status(http.StatusNoContent)
}
