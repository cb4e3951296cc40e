package web

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vbonduro/genstudio/internal/translate"
)

// failureBody is the only detail a client ever sees on failure.
const failureBody = "Translation failed"

// handleTranslate serves GET /translate?text=<percent-encoded text>. A missing
// text parameter is passed through and fails like any other decode error.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translate.Request
	if raw, ok := rawQueryValue(r.URL.RawQuery, "text"); ok {
		req.Text = &raw
	}

	// Detached so the model call finishes even if the client goes away.
	result := s.translator.Handle(context.WithoutCancel(r.Context()), req)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !result.OK() {
		w.WriteHeader(http.StatusInternalServerError)
		if _, err := io.WriteString(w, failureBody); err != nil {
			s.logger.Error("write response failed", "error", err)
		}
		return
	}

	if _, err := io.WriteString(w, result.Text()); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

// rawQueryValue returns the first value of key exactly as it appears in the
// query string. The translate handler does its own unescaping, and url.Values
// would decode the value once already.
func rawQueryValue(rawQuery, key string) (string, bool) {
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		k, v, _ := strings.Cut(pair, "=")
		if uk, err := url.QueryUnescape(k); err == nil && uk == key {
			return v, true
		}
	}
	return "", false
}
