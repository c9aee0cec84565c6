package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"listkeep/internal/model"
)

// ErrInvalidProduct rejects a replace containing a line with quantity < 1 or
// a negative price. Such a line would poison the ledger totals, so the whole
// batch is refused.
var ErrInvalidProduct = errors.New("product line has invalid quantity or price")

type ProductStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewProductStore(db *sql.DB, logger *slog.Logger) *ProductStore {
	return &ProductStore{db: db, logger: logger}
}

const productCols = `p.id, p.name, p.quantity, p.note, p.is_bought, p.is_paid, p.price, c.name, p.created_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	var bought, paid int
	err := scanner.Scan(&p.ID, &p.Name, &p.Quantity, &p.Note, &bought, &paid, &p.Price, &p.Category, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.IsBought = bought != 0
	p.IsPaid = paid != 0
	return &p, nil
}

// ListByAccount returns the account's products in insertion order.
func (s *ProductStore) ListByAccount(accountID int64) ([]model.Product, error) {
	rows, err := s.db.Query(
		`SELECT `+productCols+` FROM products p
		 JOIN categories c ON c.id = p.category_id
		 WHERE p.account_id = ? ORDER BY p.id ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// seedProduct is one starter list entry created on registration.
type seedProduct struct {
	name     string
	quantity int64
	price    float64
	category string
}

var defaultProducts = []seedProduct{
	{"Milk", 1, 3.50, "Dairy"},
	{"Bread", 1, 2.25, "Bakery"},
	{"Apples", 6, 0.50, "Produce"},
	{"Paper towels", 2, 1.99, "Household"},
}

// SeedDefaults installs the starter product list for a fresh account.
// Categories must already be seeded.
func (s *ProductStore) SeedDefaults(accountID int64) error {
	for _, sp := range defaultProducts {
		_, err := s.db.Exec(
			`INSERT INTO products (account_id, name, quantity, note, price, category_id)
			 SELECT ?, ?, ?, '', ?, id FROM categories WHERE account_id = ? AND name = ?`,
			accountID, sp.name, sp.quantity, sp.price, accountID, sp.category,
		)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", sp.name, err)
		}
	}
	return nil
}

// ReplaceResult summarizes one full-list replace.
type ReplaceResult struct {
	Updated  int
	Inserted int
	Deleted  int
	Skipped  int
	// NoOp is set when the payload (or idempotency key) matched the last
	// applied replace and nothing was touched.
	NoOp bool
}

// existingRow is the subset of a stored product the reconciliation matches on.
type existingRow struct {
	id       int64
	name     string
	quantity int64
	note     string
}

// PayloadHash returns a stable fingerprint of a replace payload, used to
// make retries of an already-applied PUT a no-op.
func PayloadHash(incoming []model.ProductInput) string {
	data, err := json.Marshal(incoming)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Replace applies the client's complete product list against the stored set
// inside one transaction. Matching is by content, in list order, each stored
// row claimable once:
//
//  1. exact (name, quantity, note) match: isBought, isPaid, price updated
//     in place, stored category kept
//  2. (name, note) match with a different quantity: the line takes the new
//     quantity and isPaid is forced to false; payment is tied to the
//     quantity that was paid for
//  3. otherwise a new line: inserted when the named category exists,
//     silently skipped when it does not (stale client category cache)
//
// Stored rows not claimed by any incoming line are deleted. A payload whose
// hash (or idempotency key, when non-empty) equals the previously applied
// one is acknowledged without touching anything.
func (s *ProductStore) Replace(accountID int64, incoming []model.ProductInput, idemKey string) (*ReplaceResult, error) {
	for _, in := range incoming {
		if in.Quantity < 1 || in.Price < 0 {
			return nil, ErrInvalidProduct
		}
	}

	hash := PayloadHash(incoming)

	var prevHash, prevKey string
	err := s.db.QueryRow(
		`SELECT sync_hash, sync_key FROM accounts WHERE id = ?`, accountID,
	).Scan(&prevHash, &prevKey)
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}
	if (hash != "" && hash == prevHash) || (idemKey != "" && idemKey == prevKey) {
		return &ReplaceResult{NoOp: true}, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	existing, err := loadExistingRows(tx, accountID)
	if err != nil {
		return nil, err
	}
	categories, err := loadCategoryIDs(tx, accountID)
	if err != nil {
		return nil, err
	}

	res := &ReplaceResult{}
	claimed := make(map[int64]bool, len(existing))

	for _, in := range incoming {
		if row := findMatch(existing, claimed, in, true); row != nil {
			claimed[row.id] = true
			_, err = tx.Exec(
				`UPDATE products SET is_bought = ?, is_paid = ?, price = ? WHERE id = ?`,
				boolToInt(in.IsBought), boolToInt(in.IsPaid), in.Price, row.id,
			)
			if err != nil {
				return nil, fmt.Errorf("update product: %w", err)
			}
			res.Updated++
			continue
		}

		if row := findMatch(existing, claimed, in, false); row != nil {
			// Quantity changed: same line, but any paid claim is void.
			claimed[row.id] = true
			_, err = tx.Exec(
				`UPDATE products SET quantity = ?, is_bought = ?, is_paid = 0, price = ? WHERE id = ?`,
				in.Quantity, boolToInt(in.IsBought), in.Price, row.id,
			)
			if err != nil {
				return nil, fmt.Errorf("requantify product: %w", err)
			}
			res.Updated++
			continue
		}

		catID, ok := categories[in.Category]
		if !ok {
			s.logger.Warn("skipping product with unknown category",
				"account", accountID, "product", in.Name, "category", in.Category)
			res.Skipped++
			continue
		}
		_, err = tx.Exec(
			`INSERT INTO products (account_id, name, quantity, note, is_bought, is_paid, price, category_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			accountID, in.Name, in.Quantity, in.Note,
			boolToInt(in.IsBought), boolToInt(in.IsPaid), in.Price, catID,
		)
		if err != nil {
			return nil, fmt.Errorf("insert product: %w", err)
		}
		res.Inserted++
	}

	for _, row := range existing {
		if !claimed[row.id] {
			if _, err := tx.Exec(`DELETE FROM products WHERE id = ?`, row.id); err != nil {
				return nil, fmt.Errorf("delete product: %w", err)
			}
			res.Deleted++
		}
	}

	_, err = tx.Exec(
		`UPDATE accounts SET sync_hash = ?, sync_key = ? WHERE id = ?`,
		hash, idemKey, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("store sync state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace: %w", err)
	}
	return res, nil
}

// findMatch returns the first unclaimed row matching the incoming entry,
// exactly (name, quantity, note) or loosely (name, note) with a different
// quantity. List order makes ties deterministic.
func findMatch(existing []existingRow, claimed map[int64]bool, in model.ProductInput, exact bool) *existingRow {
	for i := range existing {
		row := &existing[i]
		if claimed[row.id] || row.name != in.Name || row.note != in.Note {
			continue
		}
		if exact == (row.quantity == in.Quantity) {
			return row
		}
	}
	return nil
}

func loadExistingRows(tx *sql.Tx, accountID int64) ([]existingRow, error) {
	rows, err := tx.Query(
		`SELECT id, name, quantity, note FROM products WHERE account_id = ? ORDER BY id ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("load existing products: %w", err)
	}
	defer rows.Close()

	var out []existingRow
	for rows.Next() {
		var r existingRow
		if err := rows.Scan(&r.id, &r.name, &r.quantity, &r.note); err != nil {
			return nil, fmt.Errorf("scan existing product: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadCategoryIDs(tx *sql.Tx, accountID int64) (map[string]int64, error) {
	rows, err := tx.Query(`SELECT id, name FROM categories WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		out[name] = id
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
