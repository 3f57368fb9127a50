package handler

import (
	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/response"
	"github.com/xxxsen/mtodo/internal/service"
)

type TodoHandler struct {
	todos *service.TodoService
}

func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

type todoCreateRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
}

type todoUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}

type todoListRequest struct {
	Q     string `form:"q"`
	Skip  int    `form:"skip,default=0" binding:"min=0"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=100"`
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req todoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, bindError(err))
		return
	}
	todo, err := h.todos.Create(c.Request.Context(), getUser(c), service.TodoCreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, todo)
}

func (h *TodoHandler) List(c *gin.Context) {
	var req todoListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleError(c, bindError(err))
		return
	}
	todos, err := h.todos.List(c.Request.Context(), getUser(c), service.TodoListQuery{
		Query: req.Q,
		Skip:  req.Skip,
		Limit: req.Limit,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, todos)
}

func (h *TodoHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		handleError(c, appErr.ErrNotFound)
		return
	}
	todo, err := h.todos.Get(c.Request.Context(), getUser(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, todo)
}

func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		handleError(c, appErr.ErrNotFound)
		return
	}
	var req todoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, bindError(err))
		return
	}
	todo, err := h.todos.Update(c.Request.Context(), getUser(c), id, service.TodoUpdateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		handleError(c, appErr.ErrNotFound)
		return
	}
	if err := h.todos.Delete(c.Request.Context(), getUser(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.NoContent(c)
}
