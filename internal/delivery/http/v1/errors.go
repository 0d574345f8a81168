package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tasklist/internal/services"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errInvalidTaskID      = errors.New("invalid task id")
	errMissingToken       = errors.New("no token provided")
	errInvalidToken       = errors.New("invalid token")
	errMissingSigningKey  = errors.New("token verification is not configured")
)

type apiError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// serviceError maps a service failure to its response. Anything that is
// not a known sentinel is a store failure and hides its details.
func serviceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrMissingText):
		return newBadRequestError(err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return newUnauthorizedError(err.Error())
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrOwnerNotFound):
		return newNotFoundError(err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		return newConflictError(err.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
