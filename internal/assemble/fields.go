package assemble

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/internal/entity"
	"github.com/huynhduongtien171003/amis-demo/internal/normalize"
)

// Typed accessors over the normalized map. Each returns the declared
// default when the key is absent or carries an unexpected type.

func stringField(m normalize.Map, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}

func stringOr(m normalize.Map, key, def string) string {
	if s := stringField(m, key); s != "" {
		return s
	}
	return def
}

func stringPtrField(m normalize.Map, key string) *string {
	switch v := m[key].(type) {
	case *string:
		return v
	case string:
		if v != "" {
			return &v
		}
	}
	return nil
}

func amountField(m normalize.Map, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}

func amountPtrField(m normalize.Map, key string) *decimal.Decimal {
	switch v := m[key].(type) {
	case *decimal.Decimal:
		return v
	case decimal.Decimal:
		return &v
	}
	return nil
}

func dateField(m normalize.Map, key string) entity.Date {
	if v, ok := m[key].(*entity.Date); ok && v != nil {
		return *v
	}
	return entity.Date{}
}

func datePtrField(m normalize.Map, key string) *entity.Date {
	if v, ok := m[key].(*entity.Date); ok {
		return v
	}
	return nil
}

func boolField(m normalize.Map, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func stringListField(m normalize.Map, key string) []string {
	if v, ok := m[key].([]string); ok {
		return v
	}
	return []string{}
}

// mergeNotes flattens the per-stage note groups in pipeline order, with any
// carried review note first. A re-submitted aggregate brings its previous
// notes back as one joined string while reconciliation re-derives the same
// warnings, so the carried note is split on the separator and every note is
// kept once — re-processing a record leaves its notes unchanged.
func mergeNotes(fields normalize.Map, groups ...[]string) []string {
	var notes []string
	seen := make(map[string]struct{})
	add := func(n string) {
		n = strings.TrimSpace(n)
		if n == "" {
			return
		}
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		notes = append(notes, n)
	}
	for _, n := range strings.Split(stringField(fields, "review_notes"), noteSeparator) {
		add(n)
	}
	for _, g := range groups {
		for _, n := range g {
			add(n)
		}
	}
	return notes
}
