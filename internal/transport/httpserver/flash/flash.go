// Package flash carries one-shot status messages across a redirect in the
// happi_flash cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const CookieName = "happi_flash"

type Flash struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (f Flash) Empty() bool {
	return f.Success == "" && f.Error == ""
}

func Success(message string) Flash {
	return Flash{Success: message}
}

func Error(message string) Flash {
	return Flash{Error: message}
}

// Set stores f for the next request. An empty flash writes nothing.
func Set(w http.ResponseWriter, f Flash) {
	if f.Empty() {
		return
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop reads the pending flash and expires the cookie. Malformed cookies are
// dropped silently.
func Pop(w http.ResponseWriter, r *http.Request) Flash {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Flash{}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Flash{}
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return Flash{}
	}
	return f
}
