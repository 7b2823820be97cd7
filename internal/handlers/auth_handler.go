package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/homefinder/api/internal/errors"
	"github.com/stwalsh4118/homefinder/api/internal/middleware"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// AuthHandler handles login, token refresh/verify and logout.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginRequest is the body of POST /token.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of POST /token/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// VerifyRequest is the body of POST /token/verify.
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// LogoutRequest is the body of POST /logout.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// LoginResponse carries the token pair and a snapshot of the user.
type LoginResponse struct {
	User    UserSnapshot `json:"user"`
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
}

// UserSnapshot is the public user summary returned at login.
type UserSnapshot struct {
	ProfilePicture *string `json:"profile_picture"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FirstName      string  `json:"firstname"`
	LastName       string  `json:"lastname"`
	PhoneNumber    string  `json:"phone_number"`
	Bio            string  `json:"bio"`
	Role           string  `json:"role"`
	IsVerified     bool    `json:"is_verified"`
}

// AccessResponse carries a freshly issued access token.
type AccessResponse struct {
	Access string `json:"access"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// Login handles POST /api/v1/token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:    snapshot(session.User),
		Access:  session.Access,
		Refresh: session.Refresh,
	})
}

// Refresh handles POST /api/v1/token/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	access, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, AccessResponse{Access: access})
}

// Verify handles POST /api/v1/token/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.service.Verify(c.Request.Context(), req.Token); err != nil {
		respondError(c, err, "Failed to verify token")
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Logout handles POST /api/v1/logout. It revokes the submitted refresh token
// and the access token the request was authenticated with.
func (h *AuthHandler) Logout(c *gin.Context) {
	// An empty body is reported as a missing refresh token below.
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}
	if req.Refresh == "" {
		apierrors.ValidationFailed(c, "Refresh token is required.", map[string]interface{}{
			"refresh": "This field is required",
		})
		return
	}

	err := h.service.Logout(c.Request.Context(), callerID(c), middleware.GetAccessToken(c), req.Refresh)
	if err != nil {
		// A bad refresh token is a client input error here, not an auth failure.
		if errors.Is(err, services.ErrInvalidToken) {
			apierrors.ValidationFailed(c, msgInvalidToken, map[string]interface{}{"refresh": msgInvalidToken})
			return
		}
		respondError(c, err, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out."})
}

func snapshot(u *models.User) UserSnapshot {
	return UserSnapshot{
		ProfilePicture: u.ProfilePicture,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PhoneNumber:    u.PhoneNumber,
		Bio:            u.Bio,
		Role:           u.Role,
		IsVerified:     u.IsVerified,
	}
}
