package entity

import (
	"github.com/shopspring/decimal"
)

// OrderItem is one product row recognized from a customer message.
type OrderItem struct {
	LineNumber  int              `json:"line_number"`
	ProductName string           `json:"product_name"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TotalPrice  *decimal.Decimal `json:"total_price"`
	Notes       string           `json:"notes,omitempty"`
}

// Order is the finished, typed customer-order aggregate extracted from
// free-form order messages (chat, email, SMS screenshots).
type Order struct {
	CustomerType    string  `json:"customer_type,omitempty"` // "individual" or "business"
	CustomerName    string  `json:"customer_name,omitempty"`
	BusinessName    string  `json:"business_name,omitempty"`
	CustomerTaxCode *string `json:"customer_tax_code"`
	CustomerPhone   *string `json:"customer_phone"`
	CustomerAddress string  `json:"customer_address,omitempty"`
	BusinessAddress string  `json:"business_address,omitempty"`
	CustomerEmail   string  `json:"customer_email,omitempty"`

	OrderID       string `json:"order_id,omitempty"`
	OrderDate     *Date  `json:"order_date"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`

	Items       []OrderItem      `json:"items"`
	TotalAmount *decimal.Decimal `json:"total_amount"`

	// Irrelevant fragments the extraction model reported and skipped
	// (greetings, emoji, unrelated questions).
	NoiseDetected []string `json:"noise_detected"`

	Review
}
