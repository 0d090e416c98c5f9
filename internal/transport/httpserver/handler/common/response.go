package common

import (
	"encoding/json"
	"net/http"
	"net/url"

	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/middleware"
	"happi-app-go/internal/validation"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type validationEnvelope struct {
	Errors validation.Errors `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload)
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	return decodeJSON(r, dst)
}

func WriteValidation(w http.ResponseWriter, errs validation.Errors) {
	writeJSON(w, http.StatusUnprocessableEntity, validationEnvelope{Errors: errs})
}

func InvalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
}

func NotFound(w http.ResponseWriter, code, message string) {
	writeError(w, http.StatusNotFound, code, message)
}

func Internal(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func Unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

// Props are the page component properties.
type Props map[string]any

// Page is the payload the server driven frontend renders.
type Page struct {
	Component string      `json:"component"`
	Props     Props       `json:"props"`
	URL       string      `json:"url"`
	Flash     flash.Flash `json:"flash"`
}

type authProps struct {
	User *authUser `json:"user"`
}

type authUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	MembershipTier string `json:"membership_tier"`
	HappiCoins     int64  `json:"happi_coins"`
}

// Render writes a page payload, consuming any pending flash. The caller is
// shared under props.auth.
func Render(w http.ResponseWriter, r *http.Request, component string, props Props) {
	if props == nil {
		props = Props{}
	}
	shared := authProps{}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		shared.User = &authUser{
			ID:             user.ID,
			Name:           user.Name,
			Email:          user.Email,
			MembershipTier: user.MembershipTier,
			HappiCoins:     user.HappiCoins,
		}
	}
	props["auth"] = shared

	page := Page{
		Component: component,
		Props:     props,
		URL:       r.URL.RequestURI(),
		Flash:     flash.Pop(w, r),
	}
	writeJSON(w, http.StatusOK, page)
}

// Redirect answers with 303 so the client follows up with a GET.
func Redirect(w http.ResponseWriter, r *http.Request, location string, f flash.Flash) {
	flash.Set(w, f)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Back redirects to the page the request came from. Only the path and query
// of the Referer are used, so a foreign host never becomes the target.
func Back(w http.ResponseWriter, r *http.Request, fallback string, f flash.Flash) {
	Redirect(w, r, backTarget(r, fallback), f)
}

func backTarget(r *http.Request, fallback string) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return fallback
	}
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Path == "" {
		return fallback
	}
	if parsed.Host != "" && parsed.Host != r.Host {
		return fallback
	}
	return parsed.RequestURI()
}

// ValidationFailed answers 422 when err carries field errors.
func ValidationFailed(w http.ResponseWriter, err error) bool {
	errs, ok := validation.As(err)
	if !ok {
		return false
	}
	WriteValidation(w, errs)
	return true
}
