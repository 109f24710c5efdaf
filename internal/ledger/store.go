package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new LedgerStore.
func New(db *sql.DB) LedgerStore {
	return &store{
		db: db,
	}
}

// GetBalance returns the current balance for a user. Users without a token row
// are reported as holding zero coins.
func (s *store) GetBalance(userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	err := s.db.QueryRow("SELECT balance FROM tokens WHERE user_id = ?", userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", userID, err)
	}
	return balance, nil
}

// SpendTokens debits the user's balance. The check and the debit happen inside
// a single transaction, so a committed balance can never be negative.
func (s *store) SpendTokens(userID string, amount int64) (SpendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	result, err := spendInTx(tx, userID, amount)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	if result != SpendOK {
		tx.Rollback()
		return result, nil
	}
	return SpendOK, tx.Commit()
}

// spendInTx performs the balance check and debit on an open transaction. It is
// shared with the match store, which folds a debit into its own transactions.
func spendInTx(tx *sql.Tx, userID string, amount int64) (SpendResult, error) {
	var balance int64
	err := tx.QueryRow("SELECT balance FROM tokens WHERE user_id = ?", userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return SpendInsufficientFunds, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read balance for %s: %w", userID, err)
	}
	if balance < amount {
		return SpendInsufficientFunds, nil
	}
	_, err = tx.Exec("UPDATE tokens SET balance = balance - ?, updated_at = ? WHERE user_id = ?", amount, time.Now().Unix(), userID)
	if err != nil {
		return "", fmt.Errorf("failed to debit %d from %s: %w", amount, userID, err)
	}
	return SpendOK, nil
}

// SpendInTx exposes the shared debit step for stores composing it into larger
// transactions.
func SpendInTx(tx *sql.Tx, userID string, amount int64) (SpendResult, error) {
	return spendInTx(tx, userID, amount)
}

// AddTokens credits the user's balance, creating the row if needed.
func (s *store) AddTokens(userID string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return addTokens(s.db, userID, amount)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func addTokens(e execer, userID string, amount int64) error {
	_, err := e.Exec(`
		INSERT INTO tokens (user_id, balance, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			balance = balance + excluded.balance,
			updated_at = excluded.updated_at;
	`, userID, amount, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to add %d tokens to %s: %w", amount, userID, err)
	}
	return nil
}

// AddTokensInTx credits a balance inside an already-open transaction.
func AddTokensInTx(tx *sql.Tx, userID string, amount int64) error {
	return addTokens(tx, userID, amount)
}

// GrantInitialBalance provisions the signup balance for a new profile. It is a
// no-op when the user already holds a token row.
func (s *store) GrantInitialBalance(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO tokens (user_id, balance, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING;
	`, userID, InitialBalance, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to grant initial balance to %s: %w", userID, err)
	}
	return nil
}

// Clear removes all token rows. Test support.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM tokens"); err != nil {
		log.Error("Failed to clear tokens table", "error", err)
	}
}
