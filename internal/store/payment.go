package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"listkeep/internal/model"
)

var (
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrAmountExceedsBalance = errors.New("amount exceeds remaining balance")
)

type PaymentStore struct {
	db *sql.DB
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

// Summary recomputes the ledger from current state: total over all products,
// paid over isPaid products plus recorded payments, remaining as the
// difference. Nothing is cached, so concurrent product edits cannot leave a
// stale balance behind.
func (s *PaymentStore) Summary(accountID int64) (*model.Summary, error) {
	return summaryQuerier(s.db, accountID)
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func summaryQuerier(q querier, accountID int64) (*model.Summary, error) {
	rows, err := q.Query(
		`SELECT price, quantity, is_paid FROM products WHERE account_id = ?`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("load products for summary: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	paid := decimal.Zero
	for rows.Next() {
		var price float64
		var quantity int64
		var isPaid int
		if err := rows.Scan(&price, &quantity, &isPaid); err != nil {
			return nil, fmt.Errorf("scan product for summary: %w", err)
		}
		line := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity))
		total = total.Add(line)
		if isPaid != 0 {
			paid = paid.Add(line)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	payRows, err := q.Query(`SELECT amount FROM payments WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("load payments for summary: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var amount float64
		if err := payRows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("scan payment for summary: %w", err)
		}
		paid = paid.Add(decimal.NewFromFloat(amount))
	}
	if err := payRows.Err(); err != nil {
		return nil, err
	}

	return &model.Summary{
		Total:     total.InexactFloat64(),
		Paid:      paid.InexactFloat64(),
		Remaining: total.Sub(paid).InexactFloat64(),
	}, nil
}

// Record settles an amount against the account's running balance. The amount
// must be positive and no greater than the current remaining balance; the
// card ID is accepted as an opaque string. A successful payment clears the
// account's sync fingerprint, since the ledger the client last synced
// against has changed.
func (s *PaymentStore) Record(accountID int64, amount float64, cardID string) (*model.Payment, error) {
	amt := decimal.NewFromFloat(amount)
	if !amt.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	sum, err := summaryQuerier(tx, accountID)
	if err != nil {
		return nil, err
	}
	if amt.GreaterThan(decimal.NewFromFloat(sum.Remaining)) {
		return nil, ErrAmountExceedsBalance
	}

	id := uuid.NewString()
	_, err = tx.Exec(
		`INSERT INTO payments (id, account_id, amount, card_id) VALUES (?, ?, ?, ?)`,
		id, accountID, amount, cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE accounts SET sync_hash = '', sync_key = '' WHERE id = ?`, accountID,
	); err != nil {
		return nil, fmt.Errorf("clear sync state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT id, account_id, amount, card_id, created_at FROM payments WHERE id = ?`, id,
	)
	var p model.Payment
	if err := row.Scan(&p.ID, &p.AccountID, &p.Amount, &p.CardID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// ListByAccount returns the account's payment history, newest first.
func (s *PaymentStore) ListByAccount(accountID int64) ([]model.Payment, error) {
	rows, err := s.db.Query(
		`SELECT id, account_id, amount, card_id, created_at FROM payments
		 WHERE account_id = ? ORDER BY created_at DESC, id DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Amount, &p.CardID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
