package handler

import (
	"log/slog"
	"net/http"

	"listkeep/internal/auth"
	"listkeep/internal/categorize"
	"listkeep/internal/store"
)

type CategoryHandler struct {
	categories *store.CategoryStore
	logger     *slog.Logger
}

func NewCategoryHandler(cs *store.CategoryStore, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: cs, logger: logger}
}

// List returns the account's categories as a bare JSON array.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := auth.AccountID(r.Context())

	categories, err := h.categories.ListByAccount(accountID)
	if err != nil {
		h.logger.Error("list categories", "account_id", accountID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// Suggest guesses a category for a product name. Purely advisory: the sync
// contract still requires the client to send a category that exists.
func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"category": categorize.Suggest(name)})
}
