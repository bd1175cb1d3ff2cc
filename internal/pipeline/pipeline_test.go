package pipeline

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/internal/common"
)

const invoiceRaw = "```json\n" + `{
  "seller_legal_name": "Công ty TNHH Thương mại ABC",
  "seller_tax_code": "0123456789",
  "buyer_legal_name": "Công ty CP XYZ",
  "buyer_tax_code": "9876543210",
  "inv_date": "2024-01-27",
  "items": [
    {"item_name": "Laptop Dell XPS", "unit_name": "Cái", "quantity": "2",
     "unit_price": "25.000.000", "amount": "45.000.000", "vat_rate": "10%", "vat_amount": "5.000.000"}
  ],
  "total_amount_without_vat": "50.000.000",
  "total_vat_amount": "5.000.000",
  "total_amount": "55.000.000"
}` + "\n```"

func TestProcessInvoiceText_EndToEnd(t *testing.T) {
	inv, err := NewEngine(nil).ProcessInvoiceText(invoiceRaw, 2*time.Second)
	if err != nil {
		t.Fatalf("ProcessInvoiceText error: %v", err)
	}

	if inv.SellerLegalName != "Công ty TNHH Thương mại ABC" {
		t.Fatalf("SellerLegalName = %q", inv.SellerLegalName)
	}
	if inv.InvDate.String() != "2024-01-27" {
		t.Fatalf("InvDate = %s", inv.InvDate)
	}

	// 2 × 25.000.000 must overwrite the drifted 45.000.000 extension.
	if len(inv.Lines) != 1 {
		t.Fatalf("Lines = %+v", inv.Lines)
	}
	if !inv.Lines[0].Amount.Equal(decimal.NewFromInt(50000000)) {
		t.Fatalf("line amount = %s", inv.Lines[0].Amount)
	}

	// Header totals are consistent, so the correction is the only note and
	// the document does not demand review.
	if inv.NeedsReview {
		t.Fatalf("NeedsReview = true, notes %v", inv.ReviewNotes)
	}
	if inv.ReviewNotes == nil || !strings.Contains(*inv.ReviewNotes, "corrected") {
		t.Fatalf("ReviewNotes = %v", inv.ReviewNotes)
	}
	if inv.ProcessingTime != 2.0 {
		t.Fatalf("ProcessingTime = %v", inv.ProcessingTime)
	}
}

func TestProcessInvoiceText_NoPayloadIsFatal(t *testing.T) {
	_, err := NewEngine(nil).ProcessInvoiceText("xin lỗi, ảnh quá mờ để đọc", 0)
	if !errors.Is(err, common.ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}
}

func TestProcessOrderText_EndToEnd(t *testing.T) {
	raw := `{
	  "customer_name": "Nguyễn Văn A",
	  "customer_phone": "090.123.4567",
	  "items": [
	    {"product_name": "Laptop Dell XPS", "quantity": 2, "unit_price": "25tr", "total_price": "50.000.000"}
	  ],
	  "total_amount": "50tr",
	  "noise_detected": ["Chào shop", "Còn hàng không?"]
	}`

	ord, err := NewEngine(nil).ProcessOrderText(raw, time.Second)
	if err != nil {
		t.Fatalf("ProcessOrderText error: %v", err)
	}
	if ord.CustomerPhone == nil || *ord.CustomerPhone != "0901234567" {
		t.Fatalf("CustomerPhone = %v", ord.CustomerPhone)
	}
	if ord.TotalAmount == nil || !ord.TotalAmount.Equal(decimal.NewFromInt(50000000)) {
		t.Fatalf("TotalAmount = %v", ord.TotalAmount)
	}
	if ord.Items[0].TotalPrice == nil || !ord.Items[0].TotalPrice.Equal(decimal.NewFromInt(50000000)) {
		t.Fatalf("TotalPrice = %v", ord.Items[0].TotalPrice)
	}
	if ord.NeedsReview {
		t.Fatalf("NeedsReview = true, notes %v", ord.ReviewNotes)
	}
	if len(ord.NoiseDetected) != 2 {
		t.Fatalf("NoiseDetected = %v", ord.NoiseDetected)
	}
}

// Incomplete order: must-have fields missing set the review flag but the
// pipeline still produces a record.
func TestProcessOrderText_IncompleteOrder(t *testing.T) {
	ord, err := NewEngine(nil).ProcessOrderText(`{"items": [{"product_name": "Chuột", "quantity": 1}]}`, 0)
	if err != nil {
		t.Fatalf("ProcessOrderText error: %v", err)
	}
	if !ord.NeedsReview {
		t.Fatal("missing customer fields must set NeedsReview")
	}
	if ord.ReviewNotes == nil ||
		!strings.Contains(*ord.ReviewNotes, "missing customer_name") ||
		!strings.Contains(*ord.ReviewNotes, "missing customer_phone") {
		t.Fatalf("ReviewNotes = %v", ord.ReviewNotes)
	}
	if len(ord.Items) != 1 {
		t.Fatalf("Items = %+v", ord.Items)
	}
}

// A serialized aggregate fed back through the pipeline (the manual-edit
// path) must come out unchanged: normalization is a fixed point on its own
// output.
func TestProcessInvoiceMap_RoundTrip(t *testing.T) {
	e := NewEngine(nil)
	first, err := e.ProcessInvoiceText(invoiceRaw, 0)
	if err != nil {
		t.Fatalf("ProcessInvoiceText error: %v", err)
	}

	b, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := e.ProcessInvoiceMap(payload, 0)
	if second.SellerLegalName != first.SellerLegalName {
		t.Fatalf("SellerLegalName = %q", second.SellerLegalName)
	}
	if second.InvDate.String() != first.InvDate.String() {
		t.Fatalf("InvDate = %s, want %s", second.InvDate, first.InvDate)
	}
	if len(second.Lines) != 1 || !second.Lines[0].Amount.Equal(first.Lines[0].Amount) {
		t.Fatalf("Lines = %+v", second.Lines)
	}
	if second.Lines[0].VATRateName != first.Lines[0].VATRateName {
		t.Fatalf("VATRateName = %q", second.Lines[0].VATRateName)
	}
	if !second.TotalAmount.Equal(first.TotalAmount) {
		t.Fatalf("TotalAmount = %s", second.TotalAmount)
	}
	if second.NeedsReview != first.NeedsReview {
		t.Fatalf("NeedsReview = %v", second.NeedsReview)
	}
}

// A payload that states subtotal and tax but omits the grand total yields a
// record carrying total_amount 0; that discrepancy must surface, never pass
// silently.
func TestProcessInvoiceMap_AbsentGrandTotalFlagged(t *testing.T) {
	inv := NewEngine(nil).ProcessInvoiceMap(map[string]any{
		"seller_legal_name":        "Công ty A",
		"buyer_legal_name":         "Công ty B",
		"total_amount_without_vat": "100.000",
		"total_vat_amount":         "10.000",
	}, 0)

	if !inv.TotalAmount.IsZero() {
		t.Fatalf("TotalAmount = %s", inv.TotalAmount)
	}
	if !inv.NeedsReview {
		t.Fatal("defaulted grand total must set NeedsReview")
	}
	if inv.ReviewNotes == nil || !strings.Contains(*inv.ReviewNotes, "total_amount 0") {
		t.Fatalf("ReviewNotes = %v", inv.ReviewNotes)
	}
}

// Re-processing a flagged record must not stack its notes: the carried
// review note and the re-derived warning collapse to one.
func TestProcessInvoiceMap_RoundTripFlaggedNotesStable(t *testing.T) {
	e := NewEngine(nil)
	first := e.ProcessInvoiceMap(map[string]any{
		"seller_legal_name": "Công ty A",
		"buyer_legal_name":  "Công ty B",
		"seller_tax_code":   "0123456789",
		"buyer_tax_code":    "0123456789",
	}, 0)
	if !first.NeedsReview || first.ReviewNotes == nil {
		t.Fatalf("first pass: needs_review=%v notes=%v", first.NeedsReview, first.ReviewNotes)
	}

	b, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := e.ProcessInvoiceMap(payload, 0)
	if !second.NeedsReview {
		t.Fatal("review flag must survive the round trip")
	}
	if second.ReviewNotes == nil || *second.ReviewNotes != *first.ReviewNotes {
		t.Fatalf("notes must be stable across passes: %q then %q",
			*first.ReviewNotes, deref(second.ReviewNotes))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestWithTolerances(t *testing.T) {
	e := NewEngine(nil,
		WithInvoiceTolerance(decimal.NewFromInt(100)),
		WithOrderTolerance(decimal.NewFromInt(5)),
	)
	if !e.invoice.Tolerance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("invoice tolerance = %s", e.invoice.Tolerance)
	}
	if !e.order.Tolerance.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("order tolerance = %s", e.order.Tolerance)
	}
}
