package ledger

import (
	"database/sql"
	"sync"
)

// store handles all database operations for MatchCoins balances.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SpendResult is the outcome of an attempted debit.
type SpendResult string

const (
	SpendOK                SpendResult = "OK"
	SpendInsufficientFunds SpendResult = "INSUFFICIENT_FUNDS"
)

// InitialBalance is granted to every new profile.
const InitialBalance int64 = 10
