package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookie is the one-shot toast cookie: written on redirect, read and
// deleted on the next page render.
const flashCookie = "rheumacare_flash"

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SetFlash queues a flash message for the next request.
func SetFlash(w http.ResponseWriter, kind, message string) {
	payload, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads the pending flash, clears it, and returns nil when there is
// none or it cannot be decoded.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}
