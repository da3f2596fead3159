package events

// Shipping event types recorded in the outbox for downstream consumers
// (notifications, reporting).
const (
	EventOrderCreated          = "order_created"
	EventWalletDebited         = "wallet_debited"
	EventWalletCredited        = "wallet_credited"
	EventBookingManualFallback = "booking_manual_fallback"
	EventOrderCancelled        = "order_cancelled"
)

// OrderCreatedPayload captures the minimal data needed to fan an order out
// to downstream consumers.
type OrderCreatedPayload struct {
	OrderID  string `json:"order_id"`
	OrderRef string `json:"order_ref"`
	Courier  string `json:"courier"`
	AWB      string `json:"awb,omitempty"`
	Total    string `json:"total"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p OrderCreatedPayload) ToMap() map[string]any {
	payload := map[string]any{
		"order_id":  p.OrderID,
		"order_ref": p.OrderRef,
		"courier":   p.Courier,
		"total":     p.Total,
	}
	if p.AWB != "" {
		payload["awb"] = p.AWB
	}
	return payload
}
