package httpx

import (
	"net/http"
	"strings"
)

// RequireRole allows the request through only when the authenticated
// identity's role is one of the listed roles. Must run after AuthnMiddleware.
func RequireRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := want[role]; !ok {
				writeRoleError(w, allowed...)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRoleError(w http.ResponseWriter, required ...string) {
	w.Header().Set(
		"WWW-Authenticate",
		`Bearer error="insufficient_role", roles="`+strings.Join(required, " ")+`"`,
	)
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("insufficient_role"))
}
