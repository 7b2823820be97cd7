package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// UserHandler handles registration and the current-user endpoint.
type UserHandler struct {
	service services.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,url"`
	Username       string  `json:"username" binding:"required,max=150"`
	Email          string  `json:"email" binding:"omitempty,email"`
	Password       string  `json:"password" binding:"required"`
	FirstName      string  `json:"first_name" binding:"required,max=150"`
	LastName       string  `json:"last_name" binding:"required,max=150"`
	PhoneNumber    string  `json:"phone_number" binding:"omitempty,max=20"`
	Role           string  `json:"role" binding:"omitempty,oneof=buyer seller agent"`
	Bio            string  `json:"bio"`
}

// RegisterResponse wraps the created account.
type RegisterResponse struct {
	User *models.User `json:"user"`
}

// Register handles POST /api/v1/users/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	u, err := h.service.Register(c.Request.Context(), services.RegisterInput(req))
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}
	c.JSON(http.StatusCreated, RegisterResponse{User: u})
}

// Me handles GET /api/v1/user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err, "Failed to query user")
		return
	}
	c.JSON(http.StatusOK, u)
}
