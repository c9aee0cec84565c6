package handler

import (
	"log/slog"
	"net/http"

	"listkeep/internal/store"
	"listkeep/internal/websocket"
)

// AdminHandler serves the test-support surface. It is only mounted when the
// deployment enables test routes.
type AdminHandler struct {
	accounts *store.AccountStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewAdminHandler(as *store.AccountStore, hub *websocket.Hub, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{accounts: as, hub: hub, logger: logger}
}

// Wipe deletes every account and, through foreign keys, all categories,
// products and payments. Used by client test suites to reset state.
func (h *AdminHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.WipeAll(); err != nil {
		h.logger.Error("wipe", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to wipe")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastAll(websocket.NewMessage("account", "wiped", nil))
	}

	h.logger.Warn("all data wiped")
	writeMessage(w, http.StatusCreated, "ok")
}
