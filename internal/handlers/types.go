package handlers

// CreateOrderRequest is the checkout payload that opens a new order.
type CreateOrderRequest struct {
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	Description   string `json:"description"`
	CartToken     string `json:"cart_token"`
}

// CreateOrderResponse points the storefront at the payment step.
type CreateOrderResponse struct {
	OrderUUID string `json:"order_uuid"`
	PayURL    string `json:"pay_url"`
}

// OrderStatusResponse reports the current order state plus any pending
// user notices.
type OrderStatusResponse struct {
	OrderUUID string       `json:"order_uuid"`
	Status    string       `json:"status"`
	Notices   []NoticeView `json:"notices,omitempty"`
}

// NoticeView is a user notice rendered for the storefront.
type NoticeView struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
}
