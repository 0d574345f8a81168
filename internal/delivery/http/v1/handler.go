package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleDeleteAccount(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleHealth(c *gin.Context)
}

// TokenVerifier resolves a bearer token to the account it was issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type handlerImpl struct {
	logger   zerolog.Logger
	accounts services.AccountService
	tasks    services.TaskService
	verifier TokenVerifier
	pinger   Pinger
}

func New(
	logger zerolog.Logger,
	accountService services.AccountService,
	taskService services.TaskService,
	verifier TokenVerifier,
	pinger Pinger,
) Handler {
	return &handlerImpl{
		logger:   logger,
		accounts: accountService,
		tasks:    taskService,
		verifier: verifier,
		pinger:   pinger,
	}
}

// Register mounts every route on r.
func Register(r gin.IRouter, h Handler) {
	auth := r.Group("/auth")
	auth.POST("/register", h.HandleRegister)
	auth.POST("/login", h.HandleLogin)
	auth.DELETE("/delete-account", h.HandleDeleteAccount)

	todos := r.Group("/todos", h.HandleAuthMiddleware)
	todos.GET("", h.HandleGetTasks)
	todos.POST("", h.HandleCreateTask)
	todos.PUT("/:id", h.HandleUpdateTask)
	todos.DELETE("/:id", h.HandleDeleteTask)

	r.GET("/healthz", h.HandleHealth)
}
