package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ShubhamRajbabu/taskvault/internal/db"
	"github.com/ShubhamRajbabu/taskvault/internal/hash"
	"github.com/ShubhamRajbabu/taskvault/internal/middleware"
	"github.com/ShubhamRajbabu/taskvault/internal/models"
	"github.com/ShubhamRajbabu/taskvault/internal/repo"
	"github.com/ShubhamRajbabu/taskvault/internal/service"
	"github.com/ShubhamRajbabu/taskvault/internal/tokens"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Store  *repo.GormRepo
	Issuer *tokens.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	issuer, err := tokens.NewIssuer([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	store := repo.New(gdb)
	e := echo.New()
	Register(e, &Deps{
		Auth:   &AuthHTTP{Svc: &service.AuthService{Repo: store, Issuer: issuer}},
		Tasks:  &TaskHTTP{Svc: &service.TaskService{Repo: store}},
		Users:  &UserHTTP{Svc: &service.UserService{Repo: store}},
		AuthMW: middleware.NewAuth(issuer),
	})

	return &testEnv{T: t, E: e, Store: store, Issuer: issuer}
}

func (env *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func sessionCookies(t *testing.T, rec *httptest.ResponseRecorder) (access, refresh *http.Cookie) {
	t.Helper()
	access = cookieByName(t, rec, "accessToken")
	refresh = cookieByName(t, rec, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.NotEmpty(t, access.Value)
	require.NotEmpty(t, refresh.Value)
	require.True(t, access.HttpOnly)
	require.True(t, refresh.HttpOnly)
	return access, refresh
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (env *testEnv) register(username, email, password string) *httptest.ResponseRecorder {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(env.T, http.StatusCreated, rec.Code)
	return rec
}

func (env *testEnv) seedAdmin(username, email, password string) {
	env.T.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         "admin",
	}
	require.NoError(env.T, env.Store.DB.Create(&user).Error)
}
