package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mtodo/internal/middleware"
)

const serviceName = "mtodo"

type RouterDeps struct {
	Auth     *AuthHandler
	Todos    *TodoHandler
	Resolver middleware.IdentityResolver
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	useJSONFieldNames()

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
	api.POST("/auth/signup", deps.Auth.Signup)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.Resolver))
	authGroup.GET("/me", deps.Auth.Me)
	authGroup.POST("/todos", deps.Todos.Create)
	authGroup.GET("/todos", deps.Todos.List)
	authGroup.GET("/todos/:id", deps.Todos.Get)
	authGroup.PUT("/todos/:id", deps.Todos.Update)
	authGroup.DELETE("/todos/:id", deps.Todos.Delete)
}
