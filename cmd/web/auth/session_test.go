package auth

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", SessionName)
	return nil
}

func TestSessionManager_SaveAndGetEditSession_RoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)
	id := uuid.New()

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveEditSession(rr, req, id))

	cookie := sessionCookie(t, rr)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 3600, cookie.MaxAge)

	req2 := httptest.NewRequest("GET", "http://example.com/", nil)
	req2.AddCookie(cookie)

	got, err := sm.EditSession(req2)
	require.NoError(t, err)
	require.Equal(t, id, got)

	createdAt := sm.GetSessionCreatedAt(req2)
	require.False(t, createdAt.IsZero())
	require.WithinDuration(t, time.Now(), createdAt, 5*time.Second)
}

func TestSessionManager_SaveEditSession_SecureDetection(t *testing.T) {
	sm := NewSessionManager("test-secret", 0)

	t.Run("tls implies secure", func(t *testing.T) {
		req := httptest.NewRequest("GET", "https://example.com/", nil)
		req.TLS = &tls.ConnectionState{}
		rr := httptest.NewRecorder()

		require.NoError(t, sm.SaveEditSession(rr, req, uuid.New()))
		require.True(t, sessionCookie(t, rr).Secure)
	})

	t.Run("x-forwarded-proto implies secure", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rr := httptest.NewRecorder()

		require.NoError(t, sm.SaveEditSession(rr, req, uuid.New()))
		require.True(t, sessionCookie(t, rr).Secure)
	})

	t.Run("plain http is not secure", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/", nil)
		rr := httptest.NewRecorder()

		require.NoError(t, sm.SaveEditSession(rr, req, uuid.New()))
		require.False(t, sessionCookie(t, rr).Secure)
	})
}

func TestSessionManager_EditSession_Missing(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	id, err := sm.EditSession(req)
	require.ErrorIs(t, err, ErrNoEditSession)
	require.Equal(t, uuid.Nil, id)
}

func TestSessionManager_EditSession_BadCookie(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "this-is-not-a-valid-cookie"})

	id, err := sm.EditSession(req)
	require.Error(t, err)
	require.Equal(t, uuid.Nil, id)
}

func TestSessionManager_EditSession_OtherSecret(t *testing.T) {
	a := NewSessionManager("secret-a", time.Hour)
	b := NewSessionManager("secret-b", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, a.SaveEditSession(rr, req, uuid.New()))

	req2 := httptest.NewRequest("GET", "http://example.com/", nil)
	req2.AddCookie(sessionCookie(t, rr))
	_, err := b.EditSession(req2)
	require.Error(t, err)
}

func TestSessionManager_ClearSession(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	rr := httptest.NewRecorder()

	err := sm.ClearSession(rr, req)
	require.NoError(t, err)

	// Gorilla sessions writes a Set-Cookie header for deletion.
	setCookies := rr.Result().Header.Values("Set-Cookie")
	require.NotEmpty(t, setCookies)

	var found bool
	for _, v := range setCookies {
		if strings.HasPrefix(v, SessionName+"=") {
			found = true
			require.True(t, strings.Contains(v, "Max-Age=0") || strings.Contains(v, "Max-Age=-1") || strings.Contains(v, "Expires="))
			break
		}
	}
	require.True(t, found)
}

func TestSessionManager_ClearSessionExpiresSavedCookie(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveEditSession(rr, req, uuid.New()))

	req2 := httptest.NewRequest("POST", "http://example.com/api/session/new", nil)
	req2.AddCookie(sessionCookie(t, rr))
	rr2 := httptest.NewRecorder()
	require.NoError(t, sm.ClearSession(rr2, req2))

	cleared := sessionCookie(t, rr2)
	require.Less(t, cleared.MaxAge, 0)
	require.Equal(t, "/", cleared.Path)

	require.True(t, sm.GetSessionCreatedAt(httptest.NewRequest("GET", "http://example.com/", nil)).IsZero())
}
