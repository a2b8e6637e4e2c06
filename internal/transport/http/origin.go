package http

import (
	"net/http"
	"net/url"
	"strings"
)

const msgCrossOrigin = "Cross-origin request refused"

// withSameOrigin refuses cookie-authenticated mutations that cannot prove they
// come from our own pages. Requests without the session cookie (bearer API
// clients, first visits) are not at risk and pass through.
func (s *Server) withSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isMutation(r.Method) || !s.hasSessionCookie(r) {
			next.ServeHTTP(w, r)
			return
		}
		if !sameOriginRequest(r) {
			writeError(w, http.StatusForbidden, msgCrossOrigin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (s *Server) hasSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(s.opts.CookieName)
	return err == nil && cookie.Value != ""
}

// sameOriginRequest trusts Sec-Fetch-Site when the browser sends it, then
// falls back to Origin and Referer. Clients sending none of them are not browsers.
func sameOriginRequest(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "same-origin", "none":
		return true
	case "cross-site", "same-site":
		return false
	}
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		return sameHost(origin, r)
	}
	if referer := strings.TrimSpace(r.Referer()); referer != "" {
		return sameHost(referer, r)
	}
	return true
}

func sameHost(raw string, r *http.Request) bool {
	if raw == "null" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	return strings.EqualFold(parsed.Host, r.Host)
}
