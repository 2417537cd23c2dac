package middleware

import (
	"net/http"

	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/session"
	"tangled.org/repobrowser/log"
)

// WithBrowsingSession resumes the visitor's session from its cookie, issuing
// a fresh one when needed, and passes it through the context.
func WithBrowsingSession(cookies *session.Cookies, p *pages.Pages) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := cookies.Resume(w, r)
			if err != nil {
				log.FromContext(r.Context()).Error("failed to save session", "err", err)
				p.Error503(w)
				return
			}

			ctx := session.IntoContext(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
