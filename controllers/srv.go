// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"school_library_backend/app"
	"school_library_backend/db"
	"school_library_backend/session"

	"github.com/google/uuid"
)

type Srv struct {
	Repo      *db.Repo
	Sessions  *session.Store
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		Sessions:  a.Sessions(),
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// 统一设置会话 Cookie
func (s *Srv) setSessionCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// issueSession creates the Redis session and writes the cookie.
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string) error {
	id := uuid.NewString()
	if err := s.Sessions.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setSessionCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

func (s *Srv) clearSessionCookie(w http.ResponseWriter) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}
