package entity

import (
	"github.com/shopspring/decimal"
)

// InvoiceLine is one goods/services row of a VAT invoice.
type InvoiceLine struct {
	ItemType   int    `json:"item_type"`
	SortOrder  int    `json:"sort_order"`
	LineNumber int    `json:"line_number"`
	ItemCode   string `json:"item_code,omitempty"`
	ItemName   string `json:"item_name"`
	UnitName   string `json:"unit_name,omitempty"`

	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`

	VATRateName string          `json:"vat_rate_name"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
}

// TaxRateSummary aggregates pre-tax and tax amounts per VAT rate label.
type TaxRateSummary struct {
	VATRateName      string          `json:"vat_rate_name"`
	AmountWithoutVAT decimal.Decimal `json:"amount_without_vat"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
}

// Invoice is the finished, typed VAT-invoice aggregate. Once assembled it is
// treated as immutable; human review replaces the whole record.
type Invoice struct {
	InvSeries         string `json:"inv_series,omitempty"`
	InvDate           Date   `json:"inv_date"`
	CurrencyCode      string `json:"currency_code"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	PaymentMethodName string `json:"payment_method_name"`

	SellerLegalName string  `json:"seller_legal_name,omitempty"`
	SellerTaxCode   *string `json:"seller_tax_code"`
	SellerAddress   string  `json:"seller_address,omitempty"`

	BuyerLegalName  string  `json:"buyer_legal_name,omitempty"`
	BuyerTaxCode    *string `json:"buyer_tax_code"`
	BuyerAddress    string  `json:"buyer_address,omitempty"`
	BuyerPhone      *string `json:"buyer_phone_number"`
	BuyerEmail      string  `json:"buyer_email,omitempty"`

	TotalAmountWithoutVAT decimal.Decimal `json:"total_amount_without_vat"`
	TotalVATAmount        decimal.Decimal `json:"total_vat_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	TotalAmountInWords    string          `json:"total_amount_in_words,omitempty"`

	Lines       []InvoiceLine    `json:"original_invoice_detail"`
	TaxRateInfo []TaxRateSummary `json:"tax_rate_info,omitempty"`

	Review
}
