package assemble

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/huynhduongtien171003/amis-demo/internal/entity"
	"github.com/huynhduongtien171003/amis-demo/internal/normalize"
	"github.com/huynhduongtien171003/amis-demo/internal/reconcile"
)

// Order maps a normalized, reconciled field map into the customer-order
// aggregate. Same degradation policy as Invoice: defaults for absent keys,
// per-item skip on malformed rows.
func Order(fields normalize.Map, rep reconcile.Report, warnings []string, elapsed time.Duration, logger *slog.Logger) *entity.Order {
	if logger == nil {
		logger = slog.Default()
	}

	items, itemWarnings := orderItems(fields, logger)
	ord := &entity.Order{
		CustomerType:    stringField(fields, "customer_type"),
		CustomerName:    stringField(fields, "customer_name"),
		BusinessName:    stringField(fields, "business_name"),
		CustomerTaxCode: stringPtrField(fields, "customer_tax_code"),
		CustomerPhone:   stringPtrField(fields, "customer_phone"),
		CustomerAddress: stringField(fields, "customer_address"),
		BusinessAddress: stringField(fields, "business_address"),
		CustomerEmail:   stringField(fields, "customer_email"),

		OrderID:       stringField(fields, "order_id"),
		OrderDate:     datePtrField(fields, "order_date"),
		PaymentMethod: stringField(fields, "payment_method"),
		Notes:         stringField(fields, "notes"),

		Items:         items,
		TotalAmount:   amountPtrField(fields, "total_amount"),
		NoiseDetected: stringListField(fields, "noise_detected"),
	}

	notes := mergeNotes(fields, warnings, rep.Warnings, itemWarnings)
	ord.Review = Annotate(notes, boolField(fields, "needs_review"), rep.NeedsReview)
	ord.Review.ProcessingTime = elapsed.Seconds()

	logger.Info("assemble.order",
		"items", len(ord.Items),
		"customer", ord.CustomerName,
		"needs_review", ord.NeedsReview,
	)
	return ord
}

func orderItems(fields normalize.Map, logger *slog.Logger) ([]entity.OrderItem, []string) {
	raw, _ := fields["items"].([]normalize.Map)
	items := make([]entity.OrderItem, 0, len(raw))
	var warnings []string
	for i, entry := range raw {
		name := stringField(entry, "product_name")
		qty := amountField(entry, "quantity")
		if name == "" && qty.IsZero() {
			warnings = append(warnings, fmt.Sprintf("item %d skipped: no usable fields", i+1))
			logger.Warn("assemble.order.item_skipped", "index", i+1)
			continue
		}
		items = append(items, entity.OrderItem{
			LineNumber:  len(items) + 1,
			ProductName: name,
			Quantity:    qty,
			UnitPrice:   amountPtrField(entry, "unit_price"),
			TotalPrice:  amountPtrField(entry, "total_price"),
			Notes:       stringField(entry, "notes"),
		})
	}
	return items, warnings
}
