package store

import (
	"database/sql"
	"fmt"

	"listkeep/internal/model"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// DefaultCategories is the starter set seeded into every new account.
var DefaultCategories = []string{
	"Produce", "Dairy", "Bakery", "Meat", "Pantry", "Frozen", "Household", "Other",
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, name, created_at`

func (s *CategoryStore) ListByAccount(accountID int64) ([]model.Category, error) {
	rows, err := s.db.Query(
		`SELECT `+categoryCols+` FROM categories WHERE account_id = ? ORDER BY id ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// Add creates a category for the account. Re-adding an existing name is a
// no-op, not an error; the returned category is the stored row either way.
func (s *CategoryStore) Add(accountID int64, name string) (*model.Category, error) {
	_, err := s.db.Exec(
		`INSERT INTO categories (account_id, name) VALUES (?, ?)
		 ON CONFLICT(account_id, name) DO NOTHING`,
		accountID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT `+categoryCols+` FROM categories WHERE account_id = ? AND name = ?`,
		accountID, name,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// SeedDefaults installs the default category set for a fresh account.
// Safe to call repeatedly.
func (s *CategoryStore) SeedDefaults(accountID int64) error {
	for _, name := range DefaultCategories {
		if _, err := s.Add(accountID, name); err != nil {
			return err
		}
	}
	return nil
}

// GetByName resolves a category name for the account, returning nil when no
// such category exists.
func (s *CategoryStore) GetByName(accountID int64, name string) (*model.Category, error) {
	row := s.db.QueryRow(
		`SELECT `+categoryCols+` FROM categories WHERE account_id = ? AND name = ?`,
		accountID, name,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}
