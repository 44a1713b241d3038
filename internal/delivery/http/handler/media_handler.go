package handler

import (
	"net/http"

	"seyyar/internal/infrastructure/storage"

	"github.com/gin-gonic/gin"
)

// MediaHandler serves stored blobs at the URLs BlobStore hands out.
type MediaHandler struct {
	store *storage.BlobStore
}

func NewMediaHandler(store *storage.BlobStore) *MediaHandler {
	return &MediaHandler{store: store}
}

func (h *MediaHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/media/:bucket/:name", h.Serve)
}

func (h *MediaHandler) Serve(c *gin.Context) {
	f, contentType, err := h.store.Open(c.Param("bucket"), c.Param("name"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400, immutable")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, f, nil)
}
