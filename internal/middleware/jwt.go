package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/model"
	"github.com/xxxsen/mtodo/internal/pkg/errcode"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/response"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"

	unauthenticatedMessage = "could not validate credentials"
)

// IdentityResolver turns a bearer token into the active user it names.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

func JWTAuth(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolver.Resolve(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			if !appErr.IsUnauthorized(err) {
				logutil.GetLogger(c.Request.Context()).Error("resolve identity failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
				return
			}
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, unauthenticatedMessage)
			return
		}
		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok && user != nil
}
