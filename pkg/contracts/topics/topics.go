package topics

const (
	// Liquidação de pedidos
	OrderSettled = "order_settled"

	// DLQ
	OrderSettledDLQ = "order_settled_dlq"
)
