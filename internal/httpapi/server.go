package httpapi

import (
	"net/http"
	"time"

	"powertrack/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux, metrics *Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(metrics.instrument(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
