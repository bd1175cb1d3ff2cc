package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

func TestInvoiceSchema_Apply(t *testing.T) {
	raw := map[string]any{
		"seller_legal_name":        "Công ty TNHH ABC",
		"seller_tax_code":          "0123456789",
		"buyer_tax_code":           "9876543210",
		"inv_date":                 "2024-01-27",
		"buyer_phone_number":       "090 123 4567",
		"total_amount":             "1.000.000đ",
		"total_amount_without_vat": "909.091",
		"total_vat_amount":         "90.909",
		"items": []any{
			map[string]any{
				"item_name":  "Laptop Dell",
				"quantity":   "2",
				"unit_price": "500.000",
				"amount":     "1.000.000",
			},
		},
	}

	fields, warnings := InvoiceSchema().Apply(raw)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if got := fields["total_amount"].(decimal.Decimal); !got.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("total_amount = %s", got)
	}
	if got := fields["seller_tax_code"].(*string); *got != "0123456789" {
		t.Fatalf("seller_tax_code = %s", *got)
	}
	if got := fields["buyer_phone_number"].(*string); *got != "0901234567" {
		t.Fatalf("buyer_phone_number = %s", *got)
	}
	if got := fields["inv_date"].(*entity.Date); got.String() != "2024-01-27" {
		t.Fatalf("inv_date = %s", got)
	}

	items := fields["items"].([]Map)
	if len(items) != 1 {
		t.Fatalf("items = %v", items)
	}
	if got := items[0]["unit_price"].(decimal.Decimal); !got.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("unit_price = %s", got)
	}
	// Absent vat_rate gets the default label.
	if got := items[0]["vat_rate"].(string); got != "10%" {
		t.Fatalf("vat_rate = %q", got)
	}
}

// A missing or malformed invoice date falls back to today; order dates stay
// absent. The asymmetry is deliberate: an invoice without a date cannot be
// booked, an order without one can.
func TestApply_DateFallbackAsymmetry(t *testing.T) {
	today := entity.NewDate(time.Now().UTC()).String()

	fields, warnings := InvoiceSchema().Apply(map[string]any{"inv_date": "27/01/2024"})
	d, ok := fields["inv_date"].(*entity.Date)
	if !ok || d.String() != today {
		t.Fatalf("invoice date should fall back to today, got %v", fields["inv_date"])
	}
	if !hasWarning(warnings, "inv_date") {
		t.Fatalf("expected inv_date warning, got %v", warnings)
	}

	fields, warnings = OrderSchema().Apply(map[string]any{"order_date": "27/01/2024"})
	if _, ok := fields["order_date"]; ok {
		t.Fatalf("order date should stay absent, got %v", fields["order_date"])
	}
	if !hasWarning(warnings, "order_date") {
		t.Fatalf("expected order_date warning, got %v", warnings)
	}

	// Absent entirely: invoice still gets today, order stays absent, no warning.
	fields, warnings = InvoiceSchema().Apply(map[string]any{})
	if d, ok := fields["inv_date"].(*entity.Date); !ok || d.String() != today {
		t.Fatalf("absent invoice date should fall back to today, got %v", fields["inv_date"])
	}
	for _, w := range warnings {
		if strings.Contains(w, "inv_date") {
			t.Fatalf("absent date should not warn: %v", warnings)
		}
	}
}

func TestApply_UnparseableAmountWarns(t *testing.T) {
	fields, warnings := InvoiceSchema().Apply(map[string]any{
		"total_amount": "khoảng một triệu",
	})
	if got := fields["total_amount"].(decimal.Decimal); !got.IsZero() {
		t.Fatalf("total_amount = %s", got)
	}
	if !hasWarning(warnings, "total_amount") {
		t.Fatalf("expected warning, got %v", warnings)
	}
}

func TestApply_OptionalAmountDropped(t *testing.T) {
	fields, _ := OrderSchema().Apply(map[string]any{
		"total_amount": nil,
		"items": []any{
			map[string]any{"product_name": "Chuột", "quantity": "1"},
		},
	})
	if _, ok := fields["total_amount"]; ok {
		t.Fatalf("nil optional amount should stay absent, got %v", fields["total_amount"])
	}
	items := fields["items"].([]Map)
	if _, ok := items[0]["unit_price"]; ok {
		t.Fatal("absent unit_price should stay absent")
	}
}

func TestApply_MalformedItemSkipped(t *testing.T) {
	fields, warnings := OrderSchema().Apply(map[string]any{
		"items": []any{
			"not an object",
			map[string]any{"product_name": "Bàn phím", "quantity": "2"},
		},
	})
	items := fields["items"].([]Map)
	if len(items) != 1 {
		t.Fatalf("items = %v", items)
	}
	if !hasWarning(warnings, "item 1") {
		t.Fatalf("expected skip warning, got %v", warnings)
	}
}

func TestApply_NoiseDetected(t *testing.T) {
	fields, _ := OrderSchema().Apply(map[string]any{
		"noise_detected": []any{"Chào shop", "", "Còn hàng không?"},
	})
	noise := fields["noise_detected"].([]string)
	if len(noise) != 2 || noise[0] != "Chào shop" {
		t.Fatalf("noise_detected = %v", noise)
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
