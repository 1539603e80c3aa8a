package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ShubhamRajbabu/taskvault/internal/apperror"
	"github.com/ShubhamRajbabu/taskvault/internal/db"
	"github.com/ShubhamRajbabu/taskvault/internal/models"
	"github.com/ShubhamRajbabu/taskvault/internal/repo"
	"github.com/ShubhamRajbabu/taskvault/internal/tokens"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func newAuthService(t *testing.T) (*AuthService, *repo.GormRepo) {
	t.Helper()
	store := repo.New(newTestDB(t))
	issuer, err := tokens.NewIssuer([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return &AuthService{Repo: store, Issuer: issuer}, store
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %v", err)
	require.Equal(t, status, appErr.Status)
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)
	require.NotZero(t, reg.User.ID)
	require.Equal(t, "user", reg.User.Role)
	require.NotEmpty(t, reg.Pair.AccessToken)
	require.NotEmpty(t, reg.Pair.RefreshToken)
	require.NotEqual(t, "pw12345", reg.User.PasswordHash)

	login, err := svc.Login(ctx, "a@x.com", "pw12345")
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	for _, tc := range []struct{ username, email, password string }{
		{"", "a@x.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@x.com", ""},
	} {
		_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
		requireStatus(t, err, http.StatusBadRequest)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "someone_else", "a@x.com", "pw12345")
	requireStatus(t, err, http.StatusConflict)

	var count int64
	require.NoError(t, store.DB.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	// different email, same username: the unique index is the backstop
	_, err = svc.Register(ctx, "alice", "b@x.com", "pw12345")
	requireStatus(t, err, http.StatusConflict)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", "nope")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err2 := svc.Login(ctx, "nobody@x.com", "pw12345")
	requireStatus(t, err2, http.StatusUnauthorized)
	// same message for unknown user and wrong password
	require.Equal(t, err.Error(), err2.Error())

	// failed logins leave the session store untouched
	count, err := store.CountSessionsByUser(ctx, reg.User.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	_, err = store.FindSessionByToken(ctx, reg.Pair.RefreshToken)
	require.NoError(t, err)
}

func TestLoginEnforcesSingleSession(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "a@x.com", "pw12345")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "a@x.com", "pw12345")
	require.NoError(t, err)

	count, err := store.CountSessionsByUser(ctx, reg.User.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// only the latest refresh token is an active session
	_, err = store.FindSessionByToken(ctx, first.Pair.RefreshToken)
	require.ErrorIs(t, err, repo.ErrNotFound)
	_, err = store.FindSessionByToken(ctx, second.Pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)
	old := reg.Pair.RefreshToken

	pair, err := svc.Refresh(ctx, old)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, old, pair.RefreshToken)

	// replaying the consumed token fails
	_, err = svc.Refresh(ctx, old)
	requireStatus(t, err, http.StatusUnauthorized)

	// still exactly one session, bound to the fresh token
	count, err := store.CountSessionsByUser(ctx, reg.User.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	_, err = store.FindSessionByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshRejectsRevokedButValidToken(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	// cryptographically valid, but revoked server-side
	require.NoError(t, store.DeleteSessionByUser(ctx, reg.User.ID))
	_, err = svc.Refresh(ctx, reg.Pair.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "a@x.com", "pw12345")
	require.NoError(t, err)

	svc.Logout(ctx, reg.Pair.RefreshToken)
	count, err := store.CountSessionsByUser(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	// again with the same token, then with none
	svc.Logout(ctx, reg.Pair.RefreshToken)
	svc.Logout(ctx, "")
}
