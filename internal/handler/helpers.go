package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/model"
	"github.com/xxxsen/mtodo/internal/pkg/errcode"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/response"
)

var registerTagNameOnce sync.Once

// useJSONFieldNames makes validator report fields by their json/form name.
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	})
}

func getUser(c *gin.Context) *model.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bindError converts a gin binding failure into a ValidationError.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]appErr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, appErr.FieldError{Field: fe.Field(), Reason: validationReason(fe)})
		}
		return &appErr.ValidationError{Fields: fields}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	switch {
	case errors.As(err, &typeErr):
		return appErr.NewValidationError(typeErr.Field, "wrong type")
	case errors.As(err, &syntaxErr):
		return appErr.NewValidationError("body", "malformed json")
	case errors.As(err, &numErr):
		return appErr.NewValidationError("query", "must be an integer")
	default:
		return appErr.NewValidationError("body", "invalid request")
	}
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must have at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must have at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	userID, _ := c.Get(middleware.ContextUserIDKey)
	fields := []zap.Field{
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Any("user_id", userID),
		zap.Error(err),
	}
	logger := logutil.GetLogger(c.Request.Context())

	var verr *appErr.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Debug("request rejected", fields...)
		response.ValidationError(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request", verr.Fields)
	case errors.Is(err, appErr.ErrInvalid):
		logger.Debug("request rejected", fields...)
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrBadCredentials):
		logger.Info("login rejected", fields...)
		response.Error(c, http.StatusBadRequest, errcode.ErrBadCredentials, "incorrect email or password")
	case errors.Is(err, appErr.ErrConflict):
		logger.Info("request conflict", fields...)
		response.Error(c, http.StatusConflict, errcode.ErrConflict, "email already registered")
	case errors.Is(err, appErr.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "could not validate credentials")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "todo not found")
	default:
		logger.Error("request failed", fields...)
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}
