package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tasklist/internal/models"
)

type taskResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:        task.ID,
		UserID:    task.OwnerID,
		Task:      task.Text,
		Completed: task.Completed,
	}
}

type taskRequest struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	accountID, ok := h.mustAccountID(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c, accountID)
	if err != nil {
		abort(c, serviceError(err))
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	accountID, ok := h.mustAccountID(c)
	if !ok {
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Create(c, accountID, req.Task, req.Completed)
	if err != nil {
		abort(c, serviceError(err))
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	accountID, ok := h.mustAccountID(c)
	if !ok {
		return
	}

	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Update(c, accountID, taskID, req.Task, req.Completed)
	if err != nil {
		abort(c, serviceError(err))
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	accountID, ok := h.mustAccountID(c)
	if !ok {
		return
	}

	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.Delete(c, accountID, taskID)
	if err != nil {
		abort(c, serviceError(err))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "task deleted"})
}

// mustAccountID reads the id left by HandleAuthMiddleware. Its absence
// means the route was mounted without the gate.
func (h *handlerImpl) mustAccountID(c *gin.Context) (int64, bool) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no account id found in context")
		abort(c, newUnauthorizedError(errMissingToken.Error()))
		return 0, false
	}
	return accountID, true
}

func (h *handlerImpl) taskIDParam(c *gin.Context) (int64, bool) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taskID <= 0 {
		abort(c, newBadRequestError(errInvalidTaskID.Error()))
		return 0, false
	}
	return taskID, true
}
