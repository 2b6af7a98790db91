package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}

// ResourceURL builds an absolute URL on the host the request was sent to.
// Each segment is path-escaped.
func ResourceURL(r *http.Request, segments ...string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := url.URL{
		Scheme:  scheme,
		Host:    r.Host,
		Path:    "/" + strings.Join(segments, "/"),
		RawPath: "/" + strings.Join(escaped, "/"),
	}
	return u.String()
}
