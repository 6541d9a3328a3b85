package guard

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/dinoauth/internal/common"
)

const TransportHTTP = "http"

// Middleware admits only requests with a valid bearer token and hands the
// user to next through the request context. Refused requests get 401 with a
// WWW-Authenticate challenge.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Authenticate(r.Context(), TransportHTTP, r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
