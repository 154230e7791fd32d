package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"boardcore/application/ports"
	"boardcore/pkg/common"
	pkgerrors "boardcore/pkg/errors"
)

// MediaHandler exposes file URL resolution so clients can hydrate
// deferred media on demand.
type MediaHandler struct {
	storage ports.BlobStorage
	logger  *zap.Logger
	errors  *pkgerrors.ErrorHandler
}

// NewMediaHandler creates a media handler
func NewMediaHandler(storage ports.BlobStorage, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		storage: storage,
		logger:  logger,
		errors:  pkgerrors.NewErrorHandler(logger, false),
	}
}

// ResolveURL handles GET /media/{fileID}/url
func (h *MediaHandler) ResolveURL(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	url, err := h.storage.ResolveURL(r.Context(), fileID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"fileId": fileID,
		"url":    url,
	})
}

// Delete handles DELETE /media/{fileID}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	if err := h.storage.Delete(r.Context(), fileID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Media file deleted", zap.String("fileID", fileID))
	common.RespondJSON(w, http.StatusOK, map[string]string{"fileId": fileID})
}
