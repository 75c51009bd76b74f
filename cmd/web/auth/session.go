package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	SessionName       = "darkroom_session"
	EditSessionKey    = "edit_session"
	SessionCreatedKey = "created_at"
)

var (
	ErrNoEditSession = errors.New("no edit session")
)

// SessionManager binds a browser to its edit session through a signed cookie.
type SessionManager struct {
	store  *sessions.CookieStore
	maxAge time.Duration
}

func NewSessionManager(secret string, maxAge time.Duration) *SessionManager {
	if secret == "" {
		secret = generateSecret()
		slog.Warn("SESSION_SECRET not set; cookies will not survive a restart")
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &SessionManager{
		store:  sessions.NewCookieStore([]byte(secret)),
		maxAge: maxAge,
	}
}

func generateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

// SaveEditSession stores id in the session cookie.
func (sm *SessionManager) SaveEditSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) error {
	session, _ := sm.store.Get(r, SessionName)
	session.Values[EditSessionKey] = id.String()
	session.Values[SessionCreatedKey] = time.Now().Unix()

	isHTTPS := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	session.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sm.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isHTTPS,
	}

	return session.Save(r, w)
}

// EditSession returns the edit session id stored in the cookie.
func (sm *SessionManager) EditSession(r *http.Request) (uuid.UUID, error) {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		_, cookieErr := r.Cookie(SessionName)
		slog.Warn("failed to decode session", "error", err, "host", r.Host, "has_cookie", cookieErr == nil)
		return uuid.Nil, err
	}

	val, ok := session.Values[EditSessionKey]
	if !ok {
		return uuid.Nil, ErrNoEditSession
	}
	str, ok := val.(string)
	if !ok {
		return uuid.Nil, ErrNoEditSession
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, ErrNoEditSession
	}
	return id, nil
}

// GetSessionCreatedAt returns the time the cookie was issued.
// Returns zero time if the session is missing or invalid.
func (sm *SessionManager) GetSessionCreatedAt(r *http.Request) time.Time {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		return time.Time{}
	}

	val, ok := session.Values[SessionCreatedKey]
	if !ok {
		return time.Time{}
	}

	unix, ok := val.(int64)
	if !ok {
		return time.Time{}
	}

	return time.Unix(unix, 0)
}

// ClearSession expires the cookie so the next request starts a new edit
// session.
func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := sm.store.Get(r, SessionName)
	session.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode}
	return session.Save(r, w)
}
