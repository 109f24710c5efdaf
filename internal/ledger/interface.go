package ledger

// LedgerStore defines the interface for MatchCoins balance operations.
type LedgerStore interface {
	GetBalance(userID string) (int64, error)
	SpendTokens(userID string, amount int64) (SpendResult, error)
	AddTokens(userID string, amount int64) error
	GrantInitialBalance(userID string) error
	Clear()
}
