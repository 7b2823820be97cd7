package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/homefinder/api/internal/errors"
	"github.com/stwalsh4118/homefinder/api/internal/middleware"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// Client-facing messages shared by several handlers.
const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgNotFound         = "Not found."
	msgForbidden        = "You do not have permission to perform this action."
	msgInvalidID        = "Invalid identifier"
	msgInvalidBody      = "Invalid request body"
	msgDuplicateReview  = "You have already rated this property."
	msgDuplicateFav     = "This property is already in your favorites."
	msgUsernameTaken    = "A user with that username already exists."
	msgBadCredentials   = "No active account found with the given credentials"
	msgInvalidToken     = "Token is invalid or expired"
	msgStorageDisabled  = "Image storage is not available."
)

// respondError translates a service error into the API error envelope.
// Anything not recognized is a 500 carrying internalMsg.
func respondError(c *gin.Context, err error, internalMsg string) {
	var (
		filterErr *services.FilterError
		inputErr  *services.InputError
	)

	switch {
	case errors.As(err, &filterErr):
		details := make(map[string]interface{}, len(filterErr.Fields))
		for _, f := range filterErr.Fields {
			details[f.Field] = f.Reason
		}
		apierrors.ValidationFailed(c, "Invalid listing filter", details)
	case errors.As(err, &inputErr):
		apierrors.ValidationFailed(c, inputErr.Message, map[string]interface{}{inputErr.Field: inputErr.Message})

	case errors.Is(err, services.ErrAuthenticationRequired):
		apierrors.Unauthorized(c, msgNotAuthenticated)
	case errors.Is(err, services.ErrNotOwner):
		apierrors.Forbidden(c, msgForbidden)

	case errors.Is(err, services.ErrPropertyNotFound),
		errors.Is(err, services.ErrImageNotFound),
		errors.Is(err, services.ErrFavoriteNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, msgNotFound)
	case errors.Is(err, services.ErrPropertyTypeNotFound):
		apierrors.ValidationFailed(c, "Invalid property type", map[string]interface{}{
			"property_type_id": "Invalid pk - object does not exist.",
		})

	case errors.Is(err, services.ErrDuplicateFavorite):
		apierrors.Conflict(c, msgDuplicateFav, nil)
	case errors.Is(err, services.ErrDuplicateReview):
		apierrors.ValidationFailed(c, msgDuplicateReview, nil)
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.ValidationFailed(c, msgUsernameTaken, map[string]interface{}{"username": msgUsernameTaken})

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.ValidationFailed(c, msgBadCredentials, nil)
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.Unauthorized(c, msgInvalidToken)

	case errors.Is(err, services.ErrStorageUnavailable):
		apierrors.ServiceUnavailable(c, msgStorageDisabled)

	default:
		apierrors.InternalServerError(c, internalMsg, err)
	}
}

// respondBindError reports a request that failed to bind or validate.
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	apierrors.BadRequest(c, msgInvalidBody, map[string]interface{}{"error": err.Error()})
}

// pathID parses the :id path parameter, writing a 400 when it is not a
// positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, msgInvalidID, map[string]interface{}{"id": c.Param("id")})
		return 0, false
	}
	return id, true
}

// callerID returns the authenticated user, or zero for anonymous requests.
func callerID(c *gin.Context) int64 {
	id, _ := middleware.GetUserID(c)
	return id
}
