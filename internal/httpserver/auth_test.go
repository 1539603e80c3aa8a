package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterSetsCookiesAndOmitsTokensFromBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.register("alice", "a@x.com", "pw12345")
	access, refresh := sessionCookies(t, rec)

	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "a@x.com", user["email"])
	require.NotZero(t, user["id"])
	// tokens live in cookies only
	require.NotContains(t, rec.Body.String(), access.Value)
	require.NotContains(t, rec.Body.String(), refresh.Value)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["message"])
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)

	env.register("alice", "a@x.com", "pw12345")
	rec := env.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice2", "email": "a@x.com", "password": "pw12345",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "a@x.com", "pw12345")

	rec := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// unknown user yields the same status and message
	rec2 := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "pw12345",
	})
	require.Equal(t, http.StatusUnauthorized, rec2.Code)
	require.Equal(t, decodeBody(t, rec)["message"], decodeBody(t, rec2)["message"])
}

func TestRefreshWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Full lifecycle: register, login, refresh, logout, replay.
func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	recReg := env.register("alice", "a@x.com", "pw12345")
	regUser := decodeBody(t, recReg)["user"].(map[string]any)

	recLogin := env.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw12345",
	})
	require.Equal(t, http.StatusOK, recLogin.Code)
	_, loginRefresh := sessionCookies(t, recLogin)
	loginUser := decodeBody(t, recLogin)["user"].(map[string]any)
	require.Equal(t, regUser["id"], loginUser["id"])

	recRefresh := env.do(http.MethodPost, "/api/auth/refresh", nil, loginRefresh)
	require.Equal(t, http.StatusOK, recRefresh.Code)
	newAccess, newRefresh := sessionCookies(t, recRefresh)
	require.NotEqual(t, loginRefresh.Value, newRefresh.Value)
	require.NotEmpty(t, newAccess.Value)

	// the consumed refresh token is gone
	recReplay := env.do(http.MethodPost, "/api/auth/refresh", nil, loginRefresh)
	require.Equal(t, http.StatusUnauthorized, recReplay.Code)

	recLogout := env.do(http.MethodPost, "/api/auth/logout", nil, newRefresh)
	require.Equal(t, http.StatusOK, recLogout.Code)
	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := cookieByName(t, recLogout, name)
		require.NotNil(t, ck)
		require.Empty(t, ck.Value)
		require.Negative(t, ck.MaxAge)
	}

	recAfter := env.do(http.MethodPost, "/api/auth/refresh", nil, newRefresh)
	require.Equal(t, http.StatusUnauthorized, recAfter.Code)
}

func TestLogoutIsAlwaysOK(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/logout", nil, &http.Cookie{Name: "refreshToken", Value: "bogus"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)

	recReg := env.register("alice", "a@x.com", "pw12345")
	access, _ := sessionCookies(t, recReg)

	rec := env.do(http.MethodGet, "/api/users/profile", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "user", user["role"])

	rec = env.do(http.MethodGet, "/api/users/profile", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
