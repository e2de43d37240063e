package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Comparison
	router.HandleFunc("/compare", h.HandleCompare).Methods("POST")

	// Surrogate key derivation
	router.HandleFunc("/hashkey", h.HandleHashKey).Methods("POST")

	// Health check
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
}
