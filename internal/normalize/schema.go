package normalize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

// Kind selects the cleaning function applied to a field.
type Kind int

const (
	KindString Kind = iota
	KindAmount          // decimal, zero default
	KindOptionalAmount  // *decimal, nil when absent or unparseable
	KindTaxCode
	KindPhone
	KindDate
	KindRateLabel
	KindBool
	KindItems
	KindStringList
)

// FieldSpec declares how one payload field is normalized.
type FieldSpec struct {
	Kind        Kind
	Default     string // rate labels only
	FallbackNow bool   // dates only: substitute today when parsing fails
}

// LineRule names the item keys checked by the per-line arithmetic rule.
type LineRule struct {
	QuantityKey string
	PriceKey    string
	TotalKey    string
	// RequireBoth skips the check unless price and total are both present;
	// order lines often carry a quantity with no price at all.
	RequireBoth bool
}

// AggregateRule names the three header totals checked (never corrected).
type AggregateRule struct {
	SubtotalKey string
	TaxKey      string
	GrandKey    string
}

// Schema is the declarative description of one document kind: field types,
// defaults, and reconciliation roles. The invoice and order pipelines are
// the same engine parameterized by their schema.
type Schema struct {
	Kind     constants.DocumentKind
	Fields   map[string]FieldSpec
	ItemsKey string
	// ItemsAliases lists alternate payload keys for the item list, so a
	// serialized aggregate (which renames the list at the boundary) can be
	// re-submitted through the same normalization pass.
	ItemsAliases []string
	ItemFields   map[string]FieldSpec

	Tolerance decimal.Decimal
	Line      LineRule
	Identity  [2]string     // tax-code pair compared for collision; empty -> skip
	Aggregate AggregateRule // empty keys -> skip
	// LineSum compares the sum of per-item totals against this header field
	// (flag-only). Empty -> skip.
	LineSumKey string
	MustHave   []string
}

// Map is a normalized field map. Values are decimal.Decimal,
// *decimal.Decimal, *string, *entity.Date, string, bool, []string or
// []Map depending on the field's declared kind.
type Map map[string]any

// InvoiceSchema describes the VAT-invoice payload.
func InvoiceSchema() Schema {
	return Schema{
		Kind: constants.KindInvoice,
		Fields: map[string]FieldSpec{
			"seller_legal_name":    {Kind: KindString},
			"seller_tax_code":      {Kind: KindTaxCode},
			"seller_address":       {Kind: KindString},
			"inv_series":           {Kind: KindString},
			"inv_date":             {Kind: KindDate, FallbackNow: true},
			"payment_method_name":  {Kind: KindString},
			"buyer_legal_name":     {Kind: KindString},
			"buyer_tax_code":       {Kind: KindTaxCode},
			"buyer_address":        {Kind: KindString},
			"buyer_phone_number":   {Kind: KindPhone},
			"buyer_email":          {Kind: KindString},
			"items":                {Kind: KindItems},
			"total_amount_without_vat": {Kind: KindAmount},
			"total_vat_amount":         {Kind: KindAmount},
			"total_amount":             {Kind: KindAmount},
			"total_amount_in_words":    {Kind: KindString},
			"needs_review":             {Kind: KindBool},
			"review_notes":             {Kind: KindString},
		},
		ItemsKey:     "items",
		ItemsAliases: []string{"original_invoice_detail"},
		ItemFields: map[string]FieldSpec{
			"item_code":     {Kind: KindString},
			"item_name":     {Kind: KindString},
			"unit_name":     {Kind: KindString},
			"quantity":      {Kind: KindAmount},
			"unit_price":    {Kind: KindAmount},
			"amount":        {Kind: KindAmount},
			"vat_rate":      {Kind: KindRateLabel, Default: constants.DefaultVATRateName},
			"vat_rate_name": {Kind: KindString}, // serialized-aggregate spelling
			"vat_amount":    {Kind: KindAmount},
		},
		Tolerance: decimal.RequireFromString("0.01"),
		Line: LineRule{
			QuantityKey: "quantity",
			PriceKey:    "unit_price",
			TotalKey:    "amount",
		},
		Identity: [2]string{"seller_tax_code", "buyer_tax_code"},
		Aggregate: AggregateRule{
			SubtotalKey: "total_amount_without_vat",
			TaxKey:      "total_vat_amount",
			GrandKey:    "total_amount",
		},
		LineSumKey: "total_amount_without_vat",
		MustHave:   []string{"seller_legal_name", "buyer_legal_name"},
	}
}

// OrderSchema describes the customer-order payload.
func OrderSchema() Schema {
	return Schema{
		Kind: constants.KindOrder,
		Fields: map[string]FieldSpec{
			"customer_type":     {Kind: KindString},
			"customer_name":     {Kind: KindString},
			"business_name":     {Kind: KindString},
			"customer_tax_code": {Kind: KindTaxCode},
			"customer_phone":    {Kind: KindPhone},
			"customer_address":  {Kind: KindString},
			"business_address":  {Kind: KindString},
			"customer_email":    {Kind: KindString},
			"order_id":          {Kind: KindString},
			"order_date":        {Kind: KindDate},
			"payment_method":    {Kind: KindString},
			"notes":             {Kind: KindString},
			"items":             {Kind: KindItems},
			"total_amount":      {Kind: KindOptionalAmount},
			"needs_review":      {Kind: KindBool},
			"review_notes":      {Kind: KindString},
			"noise_detected":    {Kind: KindStringList},
		},
		ItemsKey: "items",
		ItemFields: map[string]FieldSpec{
			"product_name": {Kind: KindString},
			"quantity":     {Kind: KindAmount},
			"unit_price":   {Kind: KindOptionalAmount},
			"total_price":  {Kind: KindOptionalAmount},
			"notes":        {Kind: KindString},
		},
		Tolerance: decimal.NewFromInt(1),
		Line: LineRule{
			QuantityKey: "quantity",
			PriceKey:    "unit_price",
			TotalKey:    "total_price",
			RequireBoth: true,
		},
		LineSumKey: "total_amount",
		MustHave:   []string{"customer_name", "customer_phone"},
	}
}

// Apply normalizes a raw payload against the schema. Every declared field is
// cleaned by its kind; anomalies become warnings, never errors, and the
// field falls back to its type default. Unknown payload keys are ignored.
// The function is deterministic and a fixed point on its own output.
func (s Schema) Apply(raw map[string]any) (Map, []string) {
	out := make(Map, len(s.Fields))
	var warnings []string

	for name, spec := range s.Fields {
		v, present := raw[name]
		if !present && spec.Kind != KindDate && spec.Kind != KindRateLabel {
			continue
		}
		val, warn := cleanField(name, spec, v, present)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if val != nil {
			out[name] = val
		}
	}

	if s.ItemsKey != "" {
		rawItems := raw[s.ItemsKey]
		for _, alias := range s.ItemsAliases {
			if rawItems != nil {
				break
			}
			rawItems = raw[alias]
		}
		items, itemWarnings := s.normalizeItems(rawItems)
		out[s.ItemsKey] = items
		warnings = append(warnings, itemWarnings...)
	}
	return out, warnings
}

func (s Schema) normalizeItems(raw any) ([]Map, []string) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return []Map{}, nil
	}
	items := make([]Map, 0, len(list))
	var warnings []string
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("item %d: not an object, skipped", i+1))
			continue
		}
		item := make(Map, len(s.ItemFields))
		for name, spec := range s.ItemFields {
			v, present := m[name]
			if !present && spec.Kind != KindRateLabel {
				continue
			}
			val, warn := cleanField(fmt.Sprintf("item %d %s", i+1, name), spec, v, present)
			if warn != "" {
				warnings = append(warnings, warn)
			}
			if val != nil {
				item[name] = val
			}
		}
		items = append(items, item)
	}
	return items, warnings
}

// cleanField dispatches on kind. The returned value is nil when the field
// should stay absent from the normalized map.
func cleanField(name string, spec FieldSpec, v any, present bool) (any, string) {
	switch spec.Kind {
	case KindAmount:
		d, ok := CleanAmount(v)
		if !ok {
			if isEmptyValue(v) {
				return decimal.Zero, ""
			}
			return decimal.Zero, fmt.Sprintf("%s: cannot parse amount %v, using 0", name, v)
		}
		return d, ""
	case KindOptionalAmount:
		if isEmptyValue(v) {
			return nil, ""
		}
		d, ok := CleanAmount(v)
		if !ok {
			return nil, fmt.Sprintf("%s: cannot parse amount %v, dropped", name, v)
		}
		return &d, ""
	case KindTaxCode:
		code, warn := CleanTaxCode(v)
		if code == nil {
			return nil, warn
		}
		return code, warn
	case KindPhone:
		phone, warn := CleanPhone(v)
		if phone == nil {
			return nil, warn
		}
		return phone, warn
	case KindDate:
		d, warn := CleanDate(v)
		if d == nil && spec.FallbackNow {
			now := entity.NewDate(time.Now().UTC())
			return &now, warn
		}
		if d == nil {
			return nil, warn
		}
		return d, warn
	case KindRateLabel:
		return CleanRateLabel(v, spec.Default), ""
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, ""
		}
		return nil, ""
	case KindStringList:
		return cleanStringList(v), ""
	case KindItems:
		// handled by normalizeItems
		return nil, ""
	default:
		if s := CleanString(v); s != "" {
			return s, ""
		}
		return nil, ""
	}
}

func cleanStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s := CleanString(e); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return len(s) == 0 || s == "null"
	}
	return false
}
