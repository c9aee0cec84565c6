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

type PaymentHandler struct {
	payments *store.PaymentStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewPaymentHandler(ps *store.PaymentStore, hub *websocket.Hub, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: ps, hub: hub, logger: logger}
}

// Summary returns the account's running balance, recomputed from the
// product list and recorded payments on every call.
func (h *PaymentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	accountID := auth.AccountID(r.Context())

	summary, err := h.payments.Summary(accountID)
	if err != nil {
		h.logger.Error("ledger summary", "account_id", accountID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// History returns the account's recorded payments, newest first.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	accountID := auth.AccountID(r.Context())

	payments, err := h.payments.ListByAccount(accountID)
	if err != nil {
		h.logger.Error("list payments", "account_id", accountID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to list payments")
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}

	writeJSON(w, http.StatusOK, payments)
}

type payRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	CardID string  `json:"card_id" validate:"required"`
}

// Pay records a settlement against the account's balance. The card ID is
// accepted as an opaque string; no processor is contacted.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	accountID := auth.AccountID(r.Context())

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "amount must be positive and card_id is required")
		return
	}

	payment, err := h.payments.Record(accountID, req.Amount, req.CardID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNonPositiveAmount):
			writeMessage(w, http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, store.ErrAmountExceedsBalance):
			writeMessage(w, http.StatusBadRequest, "amount exceeds remaining balance")
		default:
			h.logger.Error("record payment", "account_id", accountID, "error", err)
			writeMessage(w, http.StatusInternalServerError, "failed to record payment")
		}
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(accountID, websocket.NewMessage("ledger", "payment", map[string]any{
			"id":     payment.ID,
			"amount": payment.Amount,
		}))
	}

	h.logger.Info("payment recorded",
		"account_id", accountID, "payment_id", payment.ID, "amount", payment.Amount)
	writeMessage(w, http.StatusOK, "ok")
}
