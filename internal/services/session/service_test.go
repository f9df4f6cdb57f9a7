package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calebmah/streamchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithCookies(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestCreateAndValidateSession(t *testing.T) {
	svc := NewService(nil)

	w := httptest.NewRecorder()
	require.NoError(t, svc.CreateSession(w))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, config.GetSessionCookieName(), cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	assert.True(t, svc.IsAuthenticated(requestWithCookies(cookies)))
}

func TestIsAuthenticatedWithoutCookie(t *testing.T) {
	svc := NewService(nil)
	assert.False(t, svc.IsAuthenticated(httptest.NewRequest(http.MethodGet, "/chat", nil)))
}

func TestIsAuthenticatedRejectsTamperedToken(t *testing.T) {
	svc := NewService(nil)

	w := httptest.NewRecorder()
	require.NoError(t, svc.CreateSession(w))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookies[0].Value += "tampered"

	assert.False(t, svc.IsAuthenticated(requestWithCookies(cookies)))
}

func TestIsAuthenticatedRejectsForeignSignature(t *testing.T) {
	svc := NewService(nil)

	w := httptest.NewRecorder()
	require.NoError(t, svc.CreateSession(w))
	cookies := w.Result().Cookies()

	restore := config.SetJWTSecret([]byte("a-different-secret"))
	defer restore()

	assert.False(t, svc.IsAuthenticated(requestWithCookies(cookies)))
}

func TestClearSessionInvalidatesStoredSession(t *testing.T) {
	svc := NewService(nil)

	w := httptest.NewRecorder()
	require.NoError(t, svc.CreateSession(w))
	cookies := w.Result().Cookies()
	require.True(t, svc.IsAuthenticated(requestWithCookies(cookies)))

	clearW := httptest.NewRecorder()
	svc.ClearSession(clearW, requestWithCookies(cookies))

	// The stored session is gone, so even the old cookie no longer passes
	assert.False(t, svc.IsAuthenticated(requestWithCookies(cookies)))
}
