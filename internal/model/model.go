package model

import "time"

// Account is a registered identity owning one category set and one product set.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	// SyncHash and SyncKey identify the last applied product replace, so an
	// identical retry is acknowledged without touching state.
	SyncHash  string
	SyncKey   string
	CreatedAt time.Time
}

// Category is a server-authoritative reference entry. Products refer to
// categories by name on the wire; the ID is internal.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

// Product is one shopping-list line. JSON field names are fixed by the
// client contract. ID is a surrogate key; the sync protocol still matches
// lines by content (name, quantity, note).
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Note      string    `json:"note"`
	IsBought  bool      `json:"isBought"`
	IsPaid    bool      `json:"isPaid"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"-"`
}

// ProductInput is one incoming line of a full-list replace. Any id the
// client sends is ignored; identity is resolved by content. Quantity must be
// at least 1 and price non-negative; lines breaking either are rejected, not
// reconciled.
type ProductInput struct {
	Name     string  `json:"name" validate:"required"`
	Quantity int64   `json:"quantity" validate:"gte=1"`
	Note     string  `json:"note"`
	IsBought bool    `json:"isBought"`
	IsPaid   bool    `json:"isPaid"`
	Price    float64 `json:"price" validate:"gte=0"`
	Category string  `json:"category" validate:"required"`
}

// Payment is a recorded settlement event against the account's running
// balance. The card ID is stored as the opaque string the client sent.
type Payment struct {
	ID        string    `json:"id"`
	AccountID int64     `json:"-"`
	Amount    float64   `json:"amount"`
	CardID    string    `json:"card_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the derived ledger view, recomputed on every read.
type Summary struct {
	Total     float64 `json:"total"`
	Paid      float64 `json:"paid"`
	Remaining float64 `json:"remaining"`
}
