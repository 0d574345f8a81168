package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handlerImpl) bindCredentials(c *gin.Context) (credentialsRequest, bool) {
	var req credentialsRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return req, false
	}
	return req, true
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.accounts.Register(c, req.Username, req.Password)
	if err != nil {
		abort(c, serviceError(err))
		return
	}
	c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.accounts.Login(c, req.Username, req.Password)
	if err != nil {
		abort(c, serviceError(err))
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// HandleDeleteAccount re-authenticates from the body instead of a token.
func (h *handlerImpl) HandleDeleteAccount(c *gin.Context) {
	req, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	err := h.accounts.DeleteAccount(c, req.Username, req.Password)
	if err != nil {
		abort(c, serviceError(err))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}
