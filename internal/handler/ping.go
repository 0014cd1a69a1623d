package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// HandlePing отвечает на проверку доступности сервиса.
// Внешние API здесь не опрашиваются: их недоступность не делает сервис нездоровым.
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("Error writing ping response", zap.Error(err))
	}
}
