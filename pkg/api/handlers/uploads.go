package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"minichat/pkg/logger"
	"minichat/pkg/media"
	"minichat/pkg/telemetry"
	"minichat/pkg/utils"
)

// multipart bodies are parsed with this much memory before spilling to disk
const parseMemory = 10 << 20

// RegisterUploads mounts the media upload endpoint on the router.
func RegisterUploads(r *mux.Router, ms *media.Store) {
	h := &uploadsHandler{ms: ms}
	r.HandleFunc("/upload", h.upload).Methods(http.MethodPost)
}

type uploadsHandler struct {
	ms *media.Store
}

func (h *uploadsHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(parseMemory); err != nil {
		utils.JSONError(w, http.StatusBadRequest, media.ErrNoFile.Error())
		return
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, media.ErrNoFile.Error())
		return
	}
	span := telemetry.StartSpan(r.Context(), "media.save")
	url, name, err := h.ms.Save(fh)
	span()
	if err != nil {
		switch {
		case errors.Is(err, media.ErrNoFile), errors.Is(err, media.ErrNotAllowed), errors.Is(err, media.ErrTooLarge):
			utils.JSONError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error("upload_failed", "error", err)
			utils.JSONError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	logger.Info("upload_accepted", "name", name)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"url": url})
}
