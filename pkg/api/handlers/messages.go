package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"minichat/pkg/logger"
	"minichat/pkg/models"
	"minichat/pkg/store"
	"minichat/pkg/telemetry"
	"minichat/pkg/utils"
	"minichat/pkg/validation"
)

// RegisterMessages mounts the message endpoints on the router.
func RegisterMessages(r *mux.Router, st store.Log) {
	h := &messagesHandler{st: st}
	r.HandleFunc("/messages", h.create).Methods(http.MethodPost)
	r.HandleFunc("/messages", h.list).Methods(http.MethodGet)
	r.HandleFunc("/reset", h.reset).Methods(http.MethodPost)
}

type messagesHandler struct {
	st store.Log
}

func (h *messagesHandler) create(w http.ResponseWriter, r *http.Request) {
	var m models.Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	// ids are always server-assigned; a client-sent id is discarded
	m.ID = uuid.NewString()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	if err := validation.ValidateMessage(m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	span := telemetry.StartSpan(r.Context(), "store.append")
	err := h.st.Append(m)
	span()
	if err != nil {
		logger.Error("message_append_failed", "id", m.ID, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	logger.Info("message_created", "id", m.ID, "sender", m.Sender, "type", m.Type)
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}

func (h *messagesHandler) list(w http.ResponseWriter, r *http.Request) {
	span := telemetry.StartSpan(r.Context(), "store.list")
	msgs, err := h.st.List()
	span()
	if err != nil {
		logger.Error("message_list_failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	logger.Debug("messages_list", "count", len(msgs))
	_ = utils.JSONWrite(w, http.StatusOK, msgs)
}

func (h *messagesHandler) reset(w http.ResponseWriter, r *http.Request) {
	span := telemetry.StartSpan(r.Context(), "store.reset")
	err := h.st.Reset()
	span()
	if err != nil {
		var perr *store.PersistenceError
		if errors.As(err, &perr) {
			logger.Error("chat_reset_failed", "op", perr.Op, "error", perr.Err)
		} else {
			logger.Error("chat_reset_failed", "error", err)
		}
		utils.JSONError(w, http.StatusInternalServerError, "Erro interno ao limpar o chat.")
		return
	}
	logger.Info("chat_reset")
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"message": "Chat limpo com sucesso."})
}
