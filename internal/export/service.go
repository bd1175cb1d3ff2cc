package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

// Service renders assembled aggregates into AMIS-compatible files on disk
// (Excel workbook in the accounting-import layout, plus plain JSON dumps).
type Service struct {
	outputDir string
	logger    *slog.Logger
}

func NewService(outputDir string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Service{outputDir: outputDir, logger: logger}, nil
}

// ExportInvoiceXLSX writes the VAT-invoice workbook and returns its path.
// Layout: title, seller block, invoice block, buyer block, line-item table,
// totals row, amount-in-words, export footer.
func (s *Service) ExportInvoiceXLSX(inv *entity.Invoice, jobID string) (string, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Hóa đơn GTGT"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "1F4E78"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	sectionStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "1F4E78"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 10}})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7E6E6"}},
	})

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	style := func(col, row, styleID int) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellStyle(sheet, cell, cell, styleID)
	}
	mergeRow := func(row int) {
		from, _ := excelize.CoordinatesToCellName(1, row)
		to, _ := excelize.CoordinatesToCellName(10, row)
		_ = f.MergeCell(sheet, from, to)
	}
	section := func(row int, title string) int {
		mergeRow(row)
		write(1, row, title)
		style(1, row, sectionStyle)
		return row + 1
	}
	infoRows := func(row int, pairs [][2]string) int {
		for _, p := range pairs {
			write(1, row, p[0])
			style(1, row, labelStyle)
			write(2, row, p[1])
			row++
		}
		return row
	}

	row := 1
	mergeRow(row)
	write(1, row, "HÓA ĐƠN GIÁ TRỊ GIA TĂNG")
	style(1, row, titleStyle)
	row++
	mergeRow(row)
	write(1, row, "VAT INVOICE")
	row += 2

	row = section(row, "THÔNG TIN NGƯỜI BÁN")
	row = infoRows(row, [][2]string{
		{"Tên đơn vị:", inv.SellerLegalName},
		{"Mã số thuế:", deref(inv.SellerTaxCode)},
		{"Địa chỉ:", inv.SellerAddress},
	})
	row++

	row = section(row, "THÔNG TIN HÓA ĐƠN")
	invDate := ""
	if !inv.InvDate.IsZero() {
		invDate = inv.InvDate.Format("02/01/2006")
	}
	row = infoRows(row, [][2]string{
		{"Ký hiệu hóa đơn:", inv.InvSeries},
		{"Ngày hóa đơn:", invDate},
		{"Hình thức thanh toán:", inv.PaymentMethodName},
	})
	row++

	row = section(row, "THÔNG TIN NGƯỜI MUA")
	row = infoRows(row, [][2]string{
		{"Tên đơn vị:", inv.BuyerLegalName},
		{"Mã số thuế:", deref(inv.BuyerTaxCode)},
		{"Địa chỉ:", inv.BuyerAddress},
		{"Số điện thoại:", deref(inv.BuyerPhone)},
		{"Email:", inv.BuyerEmail},
	})
	row += 2

	row = section(row, "CHI TIẾT HÀNG HÓA / DỊCH VỤ")

	headers := []struct {
		name  string
		width float64
	}{
		{"STT", 5}, {"Mã hàng", 15}, {"Tên hàng hóa/dịch vụ", 35}, {"ĐVT", 10},
		{"Số lượng", 10}, {"Đơn giá", 15}, {"Thành tiền", 15}, {"Thuế suất", 10},
		{"Tiền thuế", 15}, {"Tổng tiền", 15},
	}
	for i, h := range headers {
		write(i+1, row, h.name)
		style(i+1, row, headerStyle)
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, h.width)
	}
	row++

	for _, line := range inv.Lines {
		lineTotal := line.Amount.Add(line.VATAmount)
		write(1, row, line.LineNumber)
		write(2, row, line.ItemCode)
		write(3, row, line.ItemName)
		write(4, row, line.UnitName)
		write(5, row, line.Quantity.InexactFloat64())
		write(6, row, line.UnitPrice.InexactFloat64())
		write(7, row, line.Amount.InexactFloat64())
		write(8, row, line.VATRateName)
		write(9, row, line.VATAmount.InexactFloat64())
		write(10, row, lineTotal.InexactFloat64())
		row++
	}

	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(6, row)
	_ = f.MergeCell(sheet, from, to)
	write(1, row, "TỔNG CỘNG")
	write(7, row, inv.TotalAmountWithoutVAT.InexactFloat64())
	write(9, row, inv.TotalVATAmount.InexactFloat64())
	write(10, row, inv.TotalAmount.InexactFloat64())
	for _, col := range []int{1, 7, 8, 9, 10} {
		style(col, row, totalStyle)
	}
	row += 2

	write(1, row, "Tổng tiền bằng chữ:")
	style(1, row, labelStyle)
	write(2, row, inv.TotalAmountInWords)
	row += 2

	write(1, row, "NGƯỜI MUA HÀNG")
	write(8, row, "NGƯỜI BÁN HÀNG")
	row++
	write(1, row, "(Ký, ghi rõ họ tên)")
	write(8, row, "(Ký, đóng dấu, ghi rõ họ tên)")
	row += 3

	mergeRow(row)
	write(1, row, "Xuất bởi AMIS OCR System - "+time.Now().Format("02/01/2006 15:04:05"))

	path := s.path("HoaDon_GTGT_" + jobID + ".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx save: %w", err)
	}

	s.logger.Info("export.invoice_xlsx.ok",
		"job_id", jobID,
		"lines", len(inv.Lines),
		"path", path,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}

// jsonEnvelope wraps an exported aggregate with provenance metadata.
type jsonEnvelope struct {
	Format     string    `json:"format"`
	JobID      string    `json:"job_id"`
	ExportedAt time.Time `json:"exported_at"`
	Data       any       `json:"data"`
}

// ExportInvoiceJSON dumps the invoice aggregate as indented UTF-8 JSON.
func (s *Service) ExportInvoiceJSON(inv *entity.Invoice, jobID string) (string, error) {
	return s.writeJSON(inv, "amis_invoice_"+jobID+".json", jobID)
}

// ExportOrderJSON dumps the order aggregate as indented UTF-8 JSON.
func (s *Service) ExportOrderJSON(ord *entity.Order, jobID string) (string, error) {
	return s.writeJSON(ord, "amis_order_"+jobID+".json", jobID)
}

func (s *Service) writeJSON(v any, filename, jobID string) (string, error) {
	env := jsonEnvelope{
		Format:     "amis_v1",
		JobID:      jobID,
		ExportedAt: time.Now().UTC(),
		Data:       v,
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	path := s.path(filename)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	s.logger.Info("export.json.ok", "job_id", jobID, "path", path, "bytes", len(b))
	return path, nil
}

func (s *Service) path(filename string) string {
	stamp := time.Now().Format("20060102_150405")
	ext := filepath.Ext(filename)
	base := filename[:len(filename)-len(ext)]
	return filepath.Join(s.outputDir, base+"_"+stamp+ext)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
