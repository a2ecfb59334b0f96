package oauth2

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"
)

const oauthStateCookieName = "oauthstate"

// generateStateOauthCookie creates the CSRF state for the consent redirect
// and mirrors it into a short-lived cookie so the callback can check it.
func generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(10 * time.Minute),
		MaxAge:   600,
	})
	return state
}

func clearStateOauthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    oauthStateCookieName,
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Now(),
	})
}
