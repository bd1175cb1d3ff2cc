package llm

// Payload shape schemas (JSON-Schema draft 2020-12 subset, as generic maps).
// They are deliberately loose — model output that fails them is logged and
// still handed to normalization, which owns the real cleaning. Every scalar
// admits string, number and null because the model mixes them freely.

func invoiceShapeMap() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"line_number": looseNumber(),
			"item_name":   looseString(),
			"unit_name":   looseString(),
			"quantity":    looseNumber(),
			"unit_price":  looseNumber(),
			"amount":      looseNumber(),
			"vat_rate":    looseString(),
			"vat_amount":  looseNumber(),
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"seller_legal_name":        looseString(),
			"seller_tax_code":          looseString(),
			"seller_address":           looseString(),
			"inv_series":               looseString(),
			"inv_date":                 looseString(),
			"payment_method_name":      looseString(),
			"buyer_legal_name":         looseString(),
			"buyer_tax_code":           looseString(),
			"buyer_address":            looseString(),
			"buyer_phone_number":       looseString(),
			"buyer_email":              looseString(),
			"items":                    map[string]any{"type": "array", "items": item},
			"total_amount_without_vat": looseNumber(),
			"total_vat_amount":         looseNumber(),
			"total_amount":             looseNumber(),
			"total_amount_in_words":    looseString(),
			"needs_review":             map[string]any{"type": []string{"boolean", "null"}},
			"review_notes":             looseString(),
		},
	}
}

func orderShapeMap() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"line_number":  looseNumber(),
			"product_name": looseString(),
			"quantity":     looseNumber(),
			"unit_price":   looseNumber(),
			"total_price":  looseNumber(),
			"notes":        looseString(),
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"customer_type":     looseString(),
			"customer_name":     looseString(),
			"business_name":     looseString(),
			"customer_tax_code": looseString(),
			"customer_phone":    looseString(),
			"customer_address":  looseString(),
			"business_address":  looseString(),
			"customer_email":    looseString(),
			"order_id":          looseString(),
			"order_date":        looseString(),
			"payment_method":    looseString(),
			"notes":             looseString(),
			"items":             map[string]any{"type": "array", "items": item},
			"total_amount":      looseNumber(),
			"needs_review":      map[string]any{"type": []string{"boolean", "null"}},
			"review_notes":      looseString(),
			"noise_detected": map[string]any{
				"type":  []string{"array", "null"},
				"items": looseString(),
			},
		},
	}
}

func looseString() map[string]any {
	return map[string]any{"type": []string{"string", "number", "null"}}
}

func looseNumber() map[string]any {
	return map[string]any{"type": []string{"number", "string", "null"}}
}
