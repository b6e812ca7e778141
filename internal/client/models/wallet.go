package models

import "time"

// Wallet is the local mirror of a server-side wallet record.
//
// UserID is kept as an explicit foreign key (not only an object reference) so
// wallets remain queryable before the rest of the graph is loaded. At most
// one wallet per user may have IsPrimary set; repositories enforce the switch
// atomically.
type Wallet struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Address     string `json:"address"`
	Network     string `json:"network"`
	AccountType string `json:"account_type"`
	IsPrimary   bool   `json:"is_primary"`
	Name        string `json:"name,omitempty"`

	// Balance and BalanceUSD are decimal strings cached from the last sync.
	Balance    string `json:"balance"`
	BalanceUSD string `json:"balance_usd"`

	LastSyncedAt time.Time `json:"last_synced_at"`
}
