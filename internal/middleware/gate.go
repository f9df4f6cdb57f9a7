package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/calebmah/streamchat/internal/services/session"
)

// protectedPrefixes are the surfaces that require an authenticated
// session: the chat page, the completion endpoint and the socket.
var protectedPrefixes = []string{"/chat", "/api/chat", "/ws"}

// Gate enforces the access policy on every request. Authorised callers
// hitting the login surface are bounced to the chat surface; anonymous
// callers hitting a protected surface are bounced to login with the
// original path and query preserved in the "from" parameter. Everything
// else passes through unchanged.
func Gate(sessions *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := sessions.IsAuthenticated(r)

			if strings.HasPrefix(r.URL.Path, "/login") {
				if authenticated {
					http.Redirect(w, r, "/chat", http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if isProtected(r.URL.Path) && !authenticated {
				target := r.URL.Path
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, "/login?from="+url.QueryEscape(target), http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
