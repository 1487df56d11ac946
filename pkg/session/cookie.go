package session

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// CookieName is the name of the dashboard session cookie.
const CookieName = "vizboard-session"

// CookieMaxAge is the session cookie lifetime.
const CookieMaxAge = 7 * 24 * time.Hour

const keySessionID = "sid"

// Cookies issues and reads the signed cookie that carries a session ID.
// Only the ID travels in the cookie; state stays in the server-side Store.
type Cookies struct {
	store *sessions.CookieStore
}

// NewCookies creates a cookie codec.
//
// The secret parameter can be any passphrase; it is SHA-256 hashed to derive
// a 32-byte signing key. It must stay the same across restarts or existing
// sessions are orphaned.
func NewCookies(secret string, secure bool) *Cookies {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(CookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Cookies{store: store}
}

// ID returns the session ID carried by r, issuing a new one (and setting the
// cookie on w) when r has none or its cookie fails verification.
func (c *Cookies) ID(w http.ResponseWriter, r *http.Request) (string, error) {
	// A cookie signed with another key yields an error and a fresh session.
	sess, _ := c.store.Get(r, CookieName)

	if id, ok := sess.Values[keySessionID].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values[keySessionID] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return id, nil
}
