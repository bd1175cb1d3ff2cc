package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/internal/normalize"
)

// Report collects the outcome of one reconciliation pass. Warnings keep the
// order the rules produced them in; NeedsReview is the OR of every rule that
// asked for human eyes.
type Report struct {
	Warnings    []string
	NeedsReview bool
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Engine verifies and, where policy allows, corrects derived quantities on a
// normalized field map. Rules run in a fixed order:
//
//  1. per line: quantity × unit price overwrites a drifted line total
//     (quantity and price are primary observations, the extension is
//     derived — correction is one-directional);
//  2. identity: equal counterpart tax codes are flagged, never altered;
//  3. aggregate: subtotal + tax vs grand total is flagged, never corrected,
//     because which of the three numbers is wrong is ambiguous; a required
//     header the payload omitted compares as zero, since that is the number
//     the assembled record will carry;
//  4. line sum vs subtotal: flagged only, same ambiguity;
//  5. completeness: each absent must-have field gets its own note.
type Engine struct {
	tolerance decimal.Decimal
	logger    *slog.Logger
}

// NewEngine builds an Engine with the given tolerance. A non-positive
// tolerance falls back to one currency unit.
func NewEngine(tolerance decimal.Decimal, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if tolerance.Sign() <= 0 {
		tolerance = decimal.NewFromInt(1)
	}
	return &Engine{tolerance: tolerance, logger: logger}
}

// Run applies the schema's reconciliation roles to fields, mutating line
// totals in place where the correction policy allows. The returned report
// lists every discrepancy in rule order.
func (e *Engine) Run(schema normalize.Schema, fields normalize.Map) Report {
	var rep Report

	e.checkLines(schema, fields, &rep)
	e.checkIdentity(schema, fields, &rep)
	e.checkAggregate(schema, fields, &rep)
	e.checkLineSum(schema, fields, &rep)
	e.checkMustHave(schema, fields, &rep)

	if len(rep.Warnings) > 0 {
		e.logger.Warn("reconcile.discrepancies",
			"kind", schema.Kind,
			"count", len(rep.Warnings),
			"needs_review", rep.NeedsReview,
		)
	}
	return rep
}

func (e *Engine) checkLines(schema normalize.Schema, fields normalize.Map, rep *Report) {
	rule := schema.Line
	if rule.TotalKey == "" {
		return
	}
	for i, item := range items(schema, fields) {
		qty, qtyOK := amountAt(item, rule.QuantityKey)
		price, priceOK := amountAt(item, rule.PriceKey)
		total, totalOK := amountAt(item, rule.TotalKey)
		if rule.RequireBoth && (!priceOK || !totalOK) {
			continue
		}
		if !qtyOK || !priceOK {
			continue
		}

		expected := qty.Mul(price)
		if expected.Sub(total).Abs().GreaterThan(e.tolerance) {
			rep.warnf("item %d: %s × %s = %s, declared total %s corrected",
				i+1, qty, price, expected, total)
			setAmount(item, rule.TotalKey, expected)
		}
	}
}

func (e *Engine) checkIdentity(schema normalize.Schema, fields normalize.Map, rep *Report) {
	a, b := schema.Identity[0], schema.Identity[1]
	if a == "" || b == "" {
		return
	}
	left, leftOK := stringAt(fields, a)
	right, rightOK := stringAt(fields, b)
	if leftOK && rightOK && left == right {
		rep.NeedsReview = true
		rep.warnf("%s equals %s (%s)", a, b, left)
	}
}

func (e *Engine) checkAggregate(schema normalize.Schema, fields normalize.Map, rep *Report) {
	rule := schema.Aggregate
	if rule.GrandKey == "" {
		return
	}
	subtotal, subOK := headerAmount(schema, fields, rule.SubtotalKey)
	tax, taxOK := headerAmount(schema, fields, rule.TaxKey)
	grand, grandOK := headerAmount(schema, fields, rule.GrandKey)
	if !subOK && !taxOK && !grandOK {
		return
	}
	expected := subtotal.Add(tax)
	if expected.Sub(grand).Abs().GreaterThan(e.tolerance) {
		rep.NeedsReview = true
		rep.warnf("%s + %s = %s does not match %s %s",
			rule.SubtotalKey, rule.TaxKey, expected, rule.GrandKey, grand)
	}
}

func (e *Engine) checkLineSum(schema normalize.Schema, fields normalize.Map, rep *Report) {
	if schema.LineSumKey == "" || schema.Line.TotalKey == "" {
		return
	}
	declared, ok := headerAmount(schema, fields, schema.LineSumKey)
	if !ok {
		return
	}
	sum := decimal.Zero
	counted := 0
	for _, item := range items(schema, fields) {
		if total, ok := amountAt(item, schema.Line.TotalKey); ok {
			sum = sum.Add(total)
			counted++
		}
	}
	if counted == 0 {
		return
	}
	if sum.Sub(declared).Abs().GreaterThan(e.tolerance) {
		rep.NeedsReview = true
		rep.warnf("line totals sum to %s, %s is %s", sum, schema.LineSumKey, declared)
	}
}

func (e *Engine) checkMustHave(schema normalize.Schema, fields normalize.Map, rep *Report) {
	for _, name := range schema.MustHave {
		if _, ok := stringAt(fields, name); !ok {
			rep.NeedsReview = true
			rep.warnf("missing %s", name)
		}
	}
}

func items(schema normalize.Schema, fields normalize.Map) []normalize.Map {
	if schema.ItemsKey == "" {
		return nil
	}
	list, _ := fields[schema.ItemsKey].([]normalize.Map)
	return list
}

// headerAmount reads a header amount for comparison. A required amount the
// payload omitted reads as zero — assembly will present 0 there, so the
// check must see the same number instead of skipping and letting the
// mismatch through silently. Optional amounts stay absent.
func headerAmount(schema normalize.Schema, fields normalize.Map, key string) (decimal.Decimal, bool) {
	if d, ok := amountAt(fields, key); ok {
		return d, true
	}
	if schema.Fields[key].Kind == normalize.KindAmount {
		return decimal.Zero, true
	}
	return decimal.Zero, false
}

// amountAt reads a decimal field regardless of whether the schema declared
// it required (decimal.Decimal) or optional (*decimal.Decimal).
func amountAt(m normalize.Map, key string) (decimal.Decimal, bool) {
	switch v := m[key].(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v != nil {
			return *v, true
		}
	}
	return decimal.Zero, false
}

func setAmount(m normalize.Map, key string, d decimal.Decimal) {
	if _, isPtr := m[key].(*decimal.Decimal); isPtr {
		m[key] = &d
		return
	}
	m[key] = d
}

func stringAt(m normalize.Map, key string) (string, bool) {
	switch v := m[key].(type) {
	case string:
		if v != "" {
			return v, true
		}
	case *string:
		if v != nil && *v != "" {
			return *v, true
		}
	}
	return "", false
}
