package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	SessionName = "repobrowser-session"
	SessionId   = "id"
)

// Session identifies one visitor. It carries no credentials.
type Session struct {
	ID string
}

type Cookies struct {
	store *sessions.CookieStore
	dev   bool
}

func NewCookies(secret string, dev bool) *Cookies {
	return &Cookies{
		store: sessions.NewCookieStore([]byte(secret)),
		dev:   dev,
	}
}

// Resume returns the visitor's session, issuing a new id (and cookie) when
// the request has none or it cannot be decoded.
func (c *Cookies) Resume(w http.ResponseWriter, r *http.Request) (Session, error) {
	// a decode error still yields a usable fresh session
	sess, _ := c.store.Get(r, SessionName)

	if id, ok := sess.Values[SessionId].(string); ok && id != "" {
		return Session{ID: id}, nil
	}

	id := uuid.NewString()
	sess.Values[SessionId] = id
	sess.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   !c.dev,
		SameSite: http.SameSiteLaxMode,
	}
	if err := sess.Save(r, w); err != nil {
		return Session{}, err
	}
	return Session{ID: id}, nil
}
