package api

import (
	"context"
	"net/http"
	"os"

	"github.com/roviproject/rovi-backend/pkg/utils"
)

type contextKey string

const userEmailKey contextKey = "userEmail"

// APIKeyMiddleware gates every endpoint behind the shared service key. The
// authorization header must equal API_KEY exactly; no scheme prefix.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Authorization")
		if key == "" || key != os.Getenv("API_KEY") {
			respond(w, http.StatusUnauthorized, "Unauthorized.", false, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware gates user-scoped endpoints behind the user_token
// cookie. The verified claim subject (the user's email) is threaded through
// the request context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("user_token")
		if err != nil {
			respond(w, http.StatusUnauthorized, "Unauthorized.", false, nil)
			return
		}

		email, err := utils.ValidateUserToken(cookie.Value, os.Getenv("JWT_TOKEN"))
		if err != nil {
			respond(w, http.StatusUnauthorized, "Unauthorized.", false, nil)
			return
		}

		ctx := context.WithValue(r.Context(), userEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserEmail returns the session identity stored by SessionMiddleware.
func GetUserEmail(r *http.Request) string {
	email, _ := r.Context().Value(userEmailKey).(string)
	return email
}
