package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/roviproject/rovi-backend/pkg/utils"
)

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func respond(w http.ResponseWriter, statusCode int, message string, success bool, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ResponseBody{
		Message: message,
		Success: success,
		Data:    data,
	})
}

func respondText(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	w.Write([]byte(text))
}

// setSessionCookie attaches the signed session claim to the response.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "user_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(utils.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
