package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"listkeep/internal/auth"
	"listkeep/internal/model"
	"listkeep/internal/store"
	"listkeep/internal/websocket"
)

type ProductHandler struct {
	products *store.ProductStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewProductHandler(ps *store.ProductStore, hub *websocket.Hub, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: ps, hub: hub, logger: logger}
}

func (h *ProductHandler) broadcast(accountID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(accountID, msg)
	}
}

// List returns the account's products as a bare JSON array.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := auth.AccountID(r.Context())

	products, err := h.products.ListByAccount(accountID)
	if err != nil {
		h.logger.Error("list products", "account_id", accountID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

type replaceRequest struct {
	Products []model.ProductInput `json:"products" validate:"dive"`
}

// Replace takes the client's complete list and reconciles the stored set
// against it. The X-Idempotency-Key header, when present, lets a retried
// request be acknowledged without reapplying.
func (h *ProductHandler) Replace(w http.ResponseWriter, r *http.Request) {
	accountID := auth.AccountID(r.Context())

	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Products == nil {
		writeMessage(w, http.StatusBadRequest, "products is required")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "each product needs a name, a category, a quantity of at least 1, and a non-negative price")
		return
	}

	idemKey := r.Header.Get("X-Idempotency-Key")

	result, err := h.products.Replace(accountID, req.Products, idemKey)
	if err != nil {
		if errors.Is(err, store.ErrInvalidProduct) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("replace products", "account_id", accountID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to update products")
		return
	}

	if !result.NoOp {
		h.broadcast(accountID, websocket.NewMessage("product", "replaced", map[string]any{
			"updated":  result.Updated,
			"inserted": result.Inserted,
			"deleted":  result.Deleted,
			"skipped":  result.Skipped,
		}))
	}

	writeMessage(w, http.StatusCreated, "ok")
}
