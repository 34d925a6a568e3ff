package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/reciperescue/internal/session"
)

const (
	// SessionCookieName binds a browser to its kitchen.
	SessionCookieName = "rr_kitchen"
	// SessionHeader lets non-browser clients pick their kitchen.
	SessionHeader = "X-Kitchen-ID"

	sessionMaxAge = 30 * 24 * time.Hour
)

// Session binds every request to a kitchen id. The id comes from the
// X-Kitchen-ID header or the session cookie; when neither holds a valid
// uuid a new one is issued as a cookie.
func Session(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := session.Info{KitchenID: sessionID(r)}
			if info.KitchenID == "" {
				info = session.Info{KitchenID: uuid.NewString(), New: true}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    info.KitchenID,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := session.WithSession(r.Context(), info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(r *http.Request) string {
	if id := validID(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return validID(c.Value)
	}
	return ""
}

// validID returns the canonical form of s, or "" if s is not a uuid.
func validID(s string) string {
	if s == "" {
		return ""
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return ""
	}
	return id.String()
}
