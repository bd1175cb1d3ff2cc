package normalize

import (
	"encoding/json"
	"testing"
)

func TestCleanAmount_Strings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"1.000.000đ", "1000000"},
		{"1.000.000 VNĐ", "1000000"},
		{"500,000", "500000"},
		{"2.500.000,50", "2500000.5"},
		{"1,5", "1.5"},
		{"1234.56", "1234.56"},
		{"20tr", "20000000"},
		{"20 triệu", "20000000"},
		{"500k", "500000"},
		{"500 nghìn", "500000"},
		{"-15.000", "-15000"},
		{"  1 200 000 đ ", "1200000"},
	}
	for _, tc := range cases {
		d, ok := CleanAmount(tc.in)
		if !ok {
			t.Fatalf("CleanAmount(%q) not ok", tc.in)
		}
		if d.String() != tc.expected {
			t.Fatalf("CleanAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestCleanAmount_NonStrings(t *testing.T) {
	if d, ok := CleanAmount(json.Number("1000000")); !ok || d.String() != "1000000" {
		t.Fatalf("json.Number: ok=%v d=%s", ok, d)
	}
	if d, ok := CleanAmount(1234.5); !ok || d.String() != "1234.5" {
		t.Fatalf("float64: ok=%v d=%s", ok, d)
	}
	if _, ok := CleanAmount(nil); ok {
		t.Fatal("nil should not parse")
	}
	if _, ok := CleanAmount("không rõ"); ok {
		t.Fatal("non-numeric text should not parse")
	}
	if _, ok := CleanAmount(""); ok {
		t.Fatal("empty string should not parse")
	}
}

// Normalizing already-normalized output must not change it.
func TestCleanAmount_FixedPoint(t *testing.T) {
	inputs := []string{"1.000.000đ", "2.500.000,50", "500,000", "20tr", "1,5"}
	for _, in := range inputs {
		first, ok := CleanAmount(in)
		if !ok {
			t.Fatalf("CleanAmount(%q) not ok", in)
		}
		second, ok := CleanAmount(first.String())
		if !ok {
			t.Fatalf("CleanAmount(%q) second pass not ok", first)
		}
		if !first.Equal(second) {
			t.Fatalf("not a fixed point: %q -> %s -> %s", in, first, second)
		}
	}
}

func TestCleanTaxCode(t *testing.T) {
	code, warn := CleanTaxCode("0123456789")
	if code == nil || *code != "0123456789" || warn != "" {
		t.Fatalf("valid 10-digit: code=%v warn=%q", code, warn)
	}

	code, warn = CleanTaxCode("0123.456.789-001")
	if code == nil || *code != "0123456789001" || warn != "" {
		t.Fatalf("13 digits with separators: code=%v warn=%q", code, warn)
	}

	// Out-of-range lengths are kept but warned.
	code, warn = CleanTaxCode("12345")
	if code == nil || *code != "12345" {
		t.Fatalf("short code should be kept, got %v", code)
	}
	if warn == "" {
		t.Fatal("short code should warn")
	}

	code, warn = CleanTaxCode("")
	if code != nil || warn != "" {
		t.Fatalf("empty: code=%v warn=%q", code, warn)
	}

	code, warn = CleanTaxCode("MST: abc")
	if code != nil {
		t.Fatalf("no digits should yield nil, got %v", code)
	}
	if warn == "" {
		t.Fatal("no digits should warn")
	}
}

func TestCleanPhone(t *testing.T) {
	phone, warn := CleanPhone("090.123.4567")
	if phone == nil || *phone != "0901234567" || warn != "" {
		t.Fatalf("phone=%v warn=%q", phone, warn)
	}

	phone, warn = CleanPhone("123456")
	if phone == nil || *phone != "123456" || warn == "" {
		t.Fatalf("short phone should be kept with warning: phone=%v warn=%q", phone, warn)
	}

	if phone, _ := CleanPhone(nil); phone != nil {
		t.Fatalf("nil input should yield nil, got %v", phone)
	}
}

func TestCleanDate(t *testing.T) {
	d, warn := CleanDate("2024-01-27")
	if d == nil || d.String() != "2024-01-27" || warn != "" {
		t.Fatalf("d=%v warn=%q", d, warn)
	}

	// Only the canonical layout is accepted; alternates were the model's job.
	for _, in := range []string{"27/01/2024", "2024/01/27", "Jan 27 2024", "27-01-2024"} {
		d, warn := CleanDate(in)
		if d != nil {
			t.Fatalf("CleanDate(%q) should fail, got %v", in, d)
		}
		if warn == "" {
			t.Fatalf("CleanDate(%q) should warn", in)
		}
	}

	if d, warn := CleanDate(""); d != nil || warn != "" {
		t.Fatalf("empty: d=%v warn=%q", d, warn)
	}
}

func TestCleanRateLabel(t *testing.T) {
	if got := CleanRateLabel("8%", "10%"); got != "8%" {
		t.Fatalf("got %q", got)
	}
	if got := CleanRateLabel(nil, "10%"); got != "10%" {
		t.Fatalf("default: got %q", got)
	}
	if got := CleanRateLabel("KCT", "10%"); got != "KCT" {
		t.Fatalf("non-percentage label should pass through, got %q", got)
	}
}
