package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"
	"golang.org/x/crypto/bcrypt"

	"github.com/xxxsen/mtodo/internal/handler"
	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/pkg/jwt"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/internal/service"
	"github.com/xxxsen/mtodo/test/testutil"
)

const apiPrefix = "/api/v1"

type testEnv struct {
	router http.Handler
	users  *repo.UserRepo
	issuer *jwt.Issuer
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)
	userRepo := repo.NewUserRepo(db)
	todoRepo := repo.NewTodoRepo(db)

	issuer, err := jwt.NewIssuer([]byte("test-secret"), "HS256", time.Hour)
	require.NoError(t, err)
	authService := service.NewAuthService(userRepo, password.NewHasher(bcrypt.MinCost, 2), issuer)
	todoService := service.NewTodoService(todoRepo)

	deps := handler.RouterDeps{
		Auth:     handler.NewAuthHandler(authService),
		Todos:    handler.NewTodoHandler(todoService),
		Resolver: authService,
	}
	engine, err := webapi.NewEngine(
		apiPrefix,
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return &testEnv{router: engine, users: userRepo, issuer: issuer}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, apiPrefix+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) signup(t *testing.T, email, pass string) map[string]interface{} {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{"email": email, "password": pass})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &user))
	return user
}

func (e *testEnv) login(t *testing.T, email, pass string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": pass})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

// newUserToken signs up a user and returns a valid token for them.
func (e *testEnv) newUserToken(t *testing.T, email string) string {
	t.Helper()
	e.signup(t, email, "secret1")
	return e.login(t, email, "secret1")
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func formRequest(path string, form string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, apiPrefix+path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
