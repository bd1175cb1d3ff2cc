package assemble

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/entity"
	"github.com/huynhduongtien171003/amis-demo/internal/normalize"
	"github.com/huynhduongtien171003/amis-demo/internal/reconcile"
)

// Invoice maps a normalized, reconciled field map into the invoice
// aggregate. Absent keys take their declared defaults; a missing key is a
// normal condition, never an error. Line entries that fail to construct are
// skipped with a warning so one bad row cannot sink the document.
func Invoice(fields normalize.Map, rep reconcile.Report, warnings []string, elapsed time.Duration, logger *slog.Logger) *entity.Invoice {
	if logger == nil {
		logger = slog.Default()
	}

	lines, lineWarnings := invoiceLines(fields, logger)
	inv := &entity.Invoice{
		InvSeries:         stringField(fields, "inv_series"),
		InvDate:           dateField(fields, "inv_date"),
		CurrencyCode:      constants.DefaultCurrencyCode,
		ExchangeRate:      decimal.NewFromInt(1),
		PaymentMethodName: stringOr(fields, "payment_method_name", constants.DefaultPaymentMethod),

		SellerLegalName: stringField(fields, "seller_legal_name"),
		SellerTaxCode:   stringPtrField(fields, "seller_tax_code"),
		SellerAddress:   stringField(fields, "seller_address"),

		BuyerLegalName: stringField(fields, "buyer_legal_name"),
		BuyerTaxCode:   stringPtrField(fields, "buyer_tax_code"),
		BuyerAddress:   stringField(fields, "buyer_address"),
		BuyerPhone:     stringPtrField(fields, "buyer_phone_number"),
		BuyerEmail:     stringField(fields, "buyer_email"),

		TotalAmountWithoutVAT: amountField(fields, "total_amount_without_vat"),
		TotalVATAmount:        amountField(fields, "total_vat_amount"),
		TotalAmount:           amountField(fields, "total_amount"),
		TotalAmountInWords:    stringField(fields, "total_amount_in_words"),

		Lines:       lines,
		TaxRateInfo: taxRateInfo(lines),
	}

	notes := mergeNotes(fields, warnings, rep.Warnings, lineWarnings)
	inv.Review = Annotate(notes, boolField(fields, "needs_review"), rep.NeedsReview)
	inv.Review.ProcessingTime = elapsed.Seconds()

	logger.Info("assemble.invoice",
		"lines", len(inv.Lines),
		"total", inv.TotalAmount,
		"needs_review", inv.NeedsReview,
	)
	return inv
}

func invoiceLines(fields normalize.Map, logger *slog.Logger) ([]entity.InvoiceLine, []string) {
	raw, _ := fields["items"].([]normalize.Map)
	lines := make([]entity.InvoiceLine, 0, len(raw))
	var warnings []string
	for i, item := range raw {
		line, err := invoiceLine(item, len(lines)+1)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("item %d skipped: %v", i+1, err))
			logger.Warn("assemble.invoice.line_skipped", "index", i+1, "err", err)
			continue
		}
		lines = append(lines, line)
	}
	return lines, warnings
}

func invoiceLine(item normalize.Map, number int) (entity.InvoiceLine, error) {
	name := stringField(item, "item_name")
	qty := amountField(item, "quantity")
	price := amountField(item, "unit_price")
	amount := amountField(item, "amount")
	if name == "" && qty.IsZero() && price.IsZero() && amount.IsZero() {
		return entity.InvoiceLine{}, fmt.Errorf("no usable fields")
	}
	return entity.InvoiceLine{
		ItemType:    1,
		SortOrder:   number,
		LineNumber:  number,
		ItemCode:    stringField(item, "item_code"),
		ItemName:    name,
		UnitName:    stringField(item, "unit_name"),
		Quantity:    qty,
		UnitPrice:   price,
		Amount:      amount,
		// re-submitted aggregates spell the rate vat_rate_name
		VATRateName: stringOr(item, "vat_rate_name", stringOr(item, "vat_rate", constants.DefaultVATRateName)),
		VATAmount:   amountField(item, "vat_amount"),
	}, nil
}

// taxRateInfo groups lines by VAT rate label, summing pre-tax and tax
// amounts per rate. Label order follows first appearance.
func taxRateInfo(lines []entity.InvoiceLine) []entity.TaxRateSummary {
	if len(lines) == 0 {
		return nil
	}
	index := make(map[string]int)
	var out []entity.TaxRateSummary
	for _, l := range lines {
		i, ok := index[l.VATRateName]
		if !ok {
			i = len(out)
			index[l.VATRateName] = i
			out = append(out, entity.TaxRateSummary{VATRateName: l.VATRateName})
		}
		out[i].AmountWithoutVAT = out[i].AmountWithoutVAT.Add(l.Amount)
		out[i].VATAmount = out[i].VATAmount.Add(l.VATAmount)
	}
	return out
}
