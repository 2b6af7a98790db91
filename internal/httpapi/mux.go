package httpapi

import (
	"net/http"
)

func NewMux(pinger Pinger, metrics *Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, pinger)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}
