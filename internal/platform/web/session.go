package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
)

const SessionName = "storefront"

func NewCookieStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session returns the request session. A cookie that no longer decodes (rotated secret)
// yields a fresh session instead of an error.
func Session(c *gin.Context, store sessions.Store) *sessions.Session {
	sess, err := store.Get(c.Request, SessionName)
	if err != nil {
		logger.Warn("Session: discarding undecodable cookie: %v", err)
		sess, _ = store.New(c.Request, SessionName)
	}
	return sess
}

func SaveSession(c *gin.Context, sess *sessions.Session) error {
	return sess.Save(c.Request, c.Writer)
}
