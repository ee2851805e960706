package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// HandlePing обрабатывает запрос на проверку соединения с хранилищем
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CheckConnection(r.Context()); err != nil {
		h.logger.Error("Storage connection check failed", zap.Error(err))
		http.Error(w, "Storage connection error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
