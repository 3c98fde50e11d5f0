package server

import (
	"net/http"

	"github.com/bz888/deepchat/internal/api/server/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerRoutes(handler *handlers.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", handler.ProcessTextHandler)
	mux.HandleFunc("GET /models", handler.ModelHandler)
	mux.HandleFunc("PUT /models/current", handler.SelectModelHandler)
	mux.HandleFunc("DELETE /history", handler.ClearHistoryHandler)
	mux.HandleFunc("PUT /key", handler.KeyHandler)
	mux.HandleFunc("POST /shares", handler.CreateShareHandler)
	mux.HandleFunc("GET /shares", handler.ListSharesHandler)
	mux.HandleFunc("GET /shares/stats", handler.ShareStatsHandler)
	mux.HandleFunc("GET /shares/{id}", handler.GetShareHandler)
	mux.HandleFunc("DELETE /shares/{id}", handler.DeleteShareHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
