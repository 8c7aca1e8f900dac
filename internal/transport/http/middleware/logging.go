package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"timeclock/internal/platform/requestctx"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type accessEntry struct {
	Time      string `json:"time"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	DurMs     int64  `json:"durMs"`
	RemoteIP  string `json:"remoteIp"`
	RequestID string `json:"requestId"`
}

// Logger writes one JSON line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := accessEntry{
			Time:      start.UTC().Format(time.RFC3339),
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    rec.status,
			DurMs:     time.Since(start).Milliseconds(),
			RemoteIP:  r.RemoteAddr,
			RequestID: requestctx.RequestID(r.Context()),
		}
		if line, err := json.Marshal(entry); err == nil {
			log.Println(string(line))
		}
	})
}
