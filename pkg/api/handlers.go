package api

import (
	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/hashkey"
)

// Handler provides HTTP handlers for the change detection API
type Handler struct {
	deriver *hashkey.Deriver
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		deriver: hashkey.NewDeriver(hashkey.WithLogger(logger)),
		logger:  logger,
	}
}
