package v1

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
)

const accountIDCtxKey = "account_id"

// HandleAuthMiddleware lets the request through only with a valid token.
// A missing token is 401. A malformed header or a token that fails
// verification is 403.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	if isNil(h.verifier) {
		h.logger.Error().Msg("token verifier is not configured")
		abort(c, newAPIError(http.StatusInternalServerError, errMissingSigningKey.Error()))
		return
	}

	const authHeader = "Authorization"
	token, ok := bearerToken(c.GetHeader(authHeader))
	if !ok {
		h.logger.Debug().Msg("malformed authorization header")
		abort(c, newForbiddenError(errInvalidToken.Error()))
		return
	}
	if token == "" {
		h.logger.Debug().Msg("authorization header required")
		abort(c, newUnauthorizedError(errMissingToken.Error()))
		return
	}

	accountID, err := h.verifier.Verify(token)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to verify token")
		abort(c, newForbiddenError(errInvalidToken.Error()))
		return
	}

	c.Set(accountIDCtxKey, accountID)
	c.Next()
}

// bearerToken accepts both "Bearer <token>" and a bare token. An empty
// token with ok set means no token was sent; ok is false when the header
// carries something that is neither form.
func bearerToken(header string) (token string, ok bool) {
	fields := strings.Fields(header)
	if len(fields) > 0 && strings.EqualFold(fields[0], "Bearer") {
		fields = fields[1:]
	}
	switch len(fields) {
	case 0:
		return "", true
	case 1:
		return fields[0], true
	default:
		return "", false
	}
}

// isNil catches a typed nil stored in the interface.
func isNil(v TokenVerifier) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func accountIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get(accountIDCtxKey)
	if !exists {
		return 0, false
	}
	accountID, ok := value.(int64)
	return accountID, ok
}
