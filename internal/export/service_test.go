package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

func sampleInvoice() *entity.Invoice {
	seller := "0123456789"
	buyer := "9876543210"
	invDate, _ := entity.ParseDate("2024-01-27")
	return &entity.Invoice{
		InvDate:           invDate,
		CurrencyCode:      "VND",
		ExchangeRate:      decimal.NewFromInt(1),
		PaymentMethodName: "TM/CK",
		SellerLegalName:   "Công ty TNHH ABC",
		SellerTaxCode:     &seller,
		BuyerLegalName:    "Công ty CP XYZ",
		BuyerTaxCode:      &buyer,

		TotalAmountWithoutVAT: decimal.NewFromInt(50000000),
		TotalVATAmount:        decimal.NewFromInt(5000000),
		TotalAmount:           decimal.NewFromInt(55000000),

		Lines: []entity.InvoiceLine{
			{
				ItemType: 1, SortOrder: 1, LineNumber: 1,
				ItemName: "Laptop Dell XPS", UnitName: "Cái",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(25000000),
				Amount:      decimal.NewFromInt(50000000),
				VATRateName: "10%",
				VATAmount:   decimal.NewFromInt(5000000),
			},
		},
	}
}

func TestExportInvoiceXLSX(t *testing.T) {
	svc, err := NewService(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	path, err := svc.ExportInvoiceXLSX(sampleInvoice(), "job-1")
	if err != nil {
		t.Fatalf("ExportInvoiceXLSX error: %v", err)
	}
	if !strings.Contains(path, "HoaDon_GTGT_job-1") || !strings.HasSuffix(path, ".xlsx") {
		t.Fatalf("path = %q", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Hóa đơn GTGT")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	flat := strings.Join(flatten(rows), "|")
	for _, want := range []string{
		"HÓA ĐƠN GIÁ TRỊ GIA TĂNG",
		"Công ty TNHH ABC",
		"Laptop Dell XPS",
		"TỔNG CỘNG",
	} {
		if !strings.Contains(flat, want) {
			t.Fatalf("workbook missing %q", want)
		}
	}
}

func TestExportInvoiceJSON(t *testing.T) {
	svc, err := NewService(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	path, err := svc.ExportInvoiceJSON(sampleInvoice(), "job-1")
	if err != nil {
		t.Fatalf("ExportInvoiceJSON error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var env struct {
		Format string         `json:"format"`
		JobID  string         `json:"job_id"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if env.Format != "amis_v1" || env.JobID != "job-1" {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Data["seller_legal_name"] != "Công ty TNHH ABC" {
		t.Fatalf("seller_legal_name = %v", env.Data["seller_legal_name"])
	}
	if env.Data["inv_date"] != "2024-01-27" {
		t.Fatalf("inv_date = %v", env.Data["inv_date"])
	}
}

func flatten(rows [][]string) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}
