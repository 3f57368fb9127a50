package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/jwt"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/test/testutil"
)

func newTestAuthService(t *testing.T) (*AuthService, *repo.UserRepo) {
	t.Helper()
	db, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)
	issuer, err := jwt.NewIssuer([]byte("test-secret"), "HS256", time.Hour)
	require.NoError(t, err)
	users := repo.NewUserRepo(db)
	return NewAuthService(users, password.NewHasher(bcrypt.MinCost, 2), issuer), users
}

func TestAuthService_SignupLogin(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Signup(ctx, SignupInput{Email: "a@x.com", Password: "secret1", FullName: "Alice"})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.True(t, user.IsActive)
	require.NotEqual(t, "secret1", user.PasswordHash)

	_, err = auth.Signup(ctx, SignupInput{Email: "A@X.com", Password: "other1"})
	require.ErrorIs(t, err, appErr.ErrConflict)

	_, err = auth.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, appErr.ErrBadCredentials)
	_, err = auth.Login(ctx, "nobody@x.com", "secret1")
	require.ErrorIs(t, err, appErr.ErrBadCredentials)

	result, err := auth.Login(ctx, "A@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, TokenTypeBearer, result.TokenType)

	resolved, err := auth.Resolve(ctx, result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
}

func TestAuthService_ResolveFailuresAreUniform(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)
	auth.now = func() time.Time { return base }

	active, err := auth.Signup(ctx, SignupInput{Email: "active@x.com", Password: "secret1"})
	require.NoError(t, err)
	inactive, err := auth.Signup(ctx, SignupInput{Email: "inactive@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, users.SetActive(ctx, "inactive@x.com", false))
	gone, err := auth.Signup(ctx, SignupInput{Email: "gone@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, users.DeleteByEmail(ctx, "gone@x.com"))

	activeToken, err := auth.issuer.Issue(active.ID, base)
	require.NoError(t, err)
	inactiveToken, err := auth.issuer.Issue(inactive.ID, base)
	require.NoError(t, err)
	goneToken, err := auth.issuer.Issue(gone.ID, base)
	require.NoError(t, err)
	expiredToken, err := auth.issuer.Issue(active.ID, base.Add(-2*time.Hour))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":  "",
		"garbage":  "not-a-token",
		"tampered": activeToken[:len(activeToken)-2] + "xx",
		"expired":  expiredToken,
		"inactive": inactiveToken,
		"deleted":  goneToken,
	} {
		user, err := auth.Resolve(ctx, token)
		require.Nil(t, user, name)
		require.ErrorIs(t, err, appErr.ErrUnauthorized, name)
	}

	user, err := auth.Resolve(ctx, activeToken)
	require.NoError(t, err)
	require.Equal(t, active.ID, user.ID)
}

func TestAuthService_LoginInactive(t *testing.T) {
	auth, users := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, SignupInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, users.SetActive(ctx, "a@x.com", false))

	_, err = auth.Login(ctx, "a@x.com", "secret1")
	require.ErrorIs(t, err, appErr.ErrBadCredentials)
}

func TestAuthService_SignupRequiresEmail(t *testing.T) {
	auth, _ := newTestAuthService(t)
	_, err := auth.Signup(context.Background(), SignupInput{Email: "  ", Password: "secret1"})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = auth.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: strings.Repeat("é", 40)})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}
