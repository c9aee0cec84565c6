package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"listkeep/internal/auth"
	"listkeep/internal/model"
	"listkeep/internal/store"
)

type AuthHandler struct {
	accounts   *store.AccountStore
	categories *store.CategoryStore
	products   *store.ProductStore
	tokens     *auth.Tokens
	logger     *slog.Logger
}

func NewAuthHandler(
	as *store.AccountStore,
	cs *store.CategoryStore,
	ps *store.ProductStore,
	tokens *auth.Tokens,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:   as,
		categories: cs,
		products:   ps,
		tokens:     tokens,
		logger:     logger,
	}
}

type credentials struct {
	Email string `json:"email" validate:"required,email"`
	Pwd   string `json:"pwd" validate:"required"`
}

func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (*credentials, bool) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return nil, false
	}
	if err := validate.Struct(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "email and pwd are required")
		return nil, false
	}
	return &creds, true
}

// Register creates the account, seeds its starter categories and sample
// products, and returns a fresh token. A new account is never empty: the
// first login must hand the client something to render.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.Create(creds.Email, creds.Pwd)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeMessage(w, http.StatusConflict, "email already exists")
			return
		}
		h.logger.Error("create account", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	if err := h.categories.SeedDefaults(account.ID); err != nil {
		h.logger.Error("seed categories", "account_id", account.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	if err := h.products.SeedDefaults(account.ID); err != nil {
		h.logger.Error("seed products", "account_id", account.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, err := h.tokens.Issue(account.ID, account.Email)
	if err != nil {
		h.logger.Error("issue token", "account_id", account.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.logger.Info("account registered", "account_id", account.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

type loginResponse struct {
	Token      string           `json:"token"`
	Products   []model.Product  `json:"products"`
	Categories []model.Category `json:"categories"`
}

// Login authenticates and returns a token plus a full snapshot of the
// account's products and categories, so the client can bootstrap local
// state from one round trip.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.Authenticate(creds.Email, creds.Pwd)
	if err != nil {
		if errors.Is(err, store.ErrBadPassword) {
			writeMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("authenticate", "error", err)
		writeMessage(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.tokens.Issue(account.ID, account.Email)
	if err != nil {
		h.logger.Error("issue token", "account_id", account.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	products, err := h.products.ListByAccount(account.ID)
	if err != nil {
		h.logger.Error("list products", "account_id", account.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "login failed")
		return
	}
	categories, err := h.categories.ListByAccount(account.ID)
	if err != nil {
		h.logger.Error("list categories", "account_id", account.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusCreated, loginResponse{
		Token:      token,
		Products:   products,
		Categories: categories,
	})
}

// Check confirms the bearer token is still valid. The real work happens in
// the auth middleware; reaching here means the token passed.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}
