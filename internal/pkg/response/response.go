package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
)

type errorBody struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Details []appErr.FieldError `json:"details,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, status int, code int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Code: code, Message: message})
}

func ValidationError(c *gin.Context, status int, code int, message string, details []appErr.FieldError) {
	c.AbortWithStatusJSON(status, errorBody{Code: code, Message: message, Details: details})
}
