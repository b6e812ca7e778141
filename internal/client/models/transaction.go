package models

import "time"

// TxType classifies a transaction.
type TxType string

const (
	TxTypeSend                TxType = "send"
	TxTypeReceive             TxType = "receive"
	TxTypeSwap                TxType = "swap"
	TxTypeTapToPay            TxType = "tap_to_pay"
	TxTypeContractInteraction TxType = "contract_interaction"
)

// TxStatus is a strict forward-progress state machine:
//
//	pending -> confirming -> confirmed
//	pending|confirming    -> failed | cancelled
//
// confirmed, failed and cancelled are terminal.
type TxStatus string

const (
	TxStatusPending    TxStatus = "pending"
	TxStatusConfirming TxStatus = "confirming"
	TxStatusConfirmed  TxStatus = "confirmed"
	TxStatusFailed     TxStatus = "failed"
	TxStatusCancelled  TxStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s TxStatus) IsTerminal() bool {
	return s == TxStatusConfirmed || s == TxStatusFailed || s == TxStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward-progress transition. Re-asserting the current status is allowed
// (server syncs are idempotent); regressing from a terminal state is not.
func (s TxStatus) CanTransitionTo(next TxStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case TxStatusPending:
		return next == TxStatusConfirming || next == TxStatusConfirmed ||
			next == TxStatusFailed || next == TxStatusCancelled
	case TxStatusConfirming:
		return next == TxStatusConfirmed || next == TxStatusFailed || next == TxStatusCancelled
	default:
		return false
	}
}

// Transaction is the local mirror of a server-side transaction record. Rows
// are only ever written by the reconciler applying server responses; the
// client never inserts a transaction before the server has confirmed it, to
// avoid local/server id collisions.
type Transaction struct {
	ID       string   `json:"id"`
	WalletID string   `json:"wallet_id"`
	Type     TxType   `json:"type"`
	Status   TxStatus `json:"status"`

	// Amount and Fee are decimal strings; floating point would lose
	// precision on token quantities.
	Amount string `json:"amount"`
	Fee    string `json:"fee,omitempty"`

	TokenSymbol   string `json:"token_symbol"`
	Network       string `json:"network,omitempty"`
	FromAddress   string `json:"from_address"`
	ToAddress     string `json:"to_address"`
	RecipientTag  string `json:"recipient_tag,omitempty"`
	TxHash        string `json:"tx_hash,omitempty"`
	Confirmations int    `json:"confirmations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
