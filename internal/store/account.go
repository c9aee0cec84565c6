package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"listkeep/internal/model"
)

var (
	ErrEmailTaken  = errors.New("email already exists")
	ErrBadPassword = errors.New("invalid credentials")
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := scanner.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.SyncHash, &a.SyncKey, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const accountCols = `id, email, password_hash, sync_hash, sync_key, created_at`

// Create registers a new account with a bcrypt-hashed password.
// Returns ErrEmailTaken when the email is already registered.
func (s *AccountStore) Create(email, password string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if existing, err := s.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO accounts (email, password_hash) VALUES (?, ?)`,
		email, string(hash),
	)
	if err != nil {
		// Unique constraint race with a concurrent register.
		return nil, ErrEmailTaken
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AccountStore) GetByID(id int64) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) GetByEmail(email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// Authenticate returns the account matching the credentials, or
// ErrBadPassword for an unknown email or wrong password.
func (s *AccountStore) Authenticate(email, password string) (*model.Account, error) {
	a, err := s.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrBadPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	return a, nil
}

// WipeAll removes every account and, via foreign keys, all owned data.
// Test isolation only.
func (s *AccountStore) WipeAll() error {
	if _, err := s.db.Exec(`DELETE FROM accounts`); err != nil {
		return fmt.Errorf("wipe accounts: %w", err)
	}
	return nil
}
