package events

import (
	"encoding/json"
	"time"
)

// OrderSettled é emitido pelo backend de liquidação quando um pedido
// transiciona de WAITING para WINNING|LOSING. Selection e Result carregam
// os formatos por família e são decodificados pelo consumidor.
type OrderSettled struct {
	OrderID        string          `json:"order_id"`
	CustomerID     string          `json:"customer_id"`
	GameFamily     string          `json:"game_family"` // WINGO | TRX_WINGO | K3 | 5D
	IssueNumber    string          `json:"issue_number"`
	Selection      json.RawMessage `json:"selection"`
	Result         json.RawMessage `json:"result"`
	AmountCents    int64           `json:"amount_cents"`
	FeeCents       int64           `json:"fee_cents"`
	WinAmountCents int64           `json:"win_amount_cents"`
	State          string          `json:"state"` // WINNING | LOSING
	CreatedAt      time.Time       `json:"created_at"`
	SettledAt      time.Time       `json:"settled_at"`
}
