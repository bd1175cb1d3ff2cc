package llm

import "strings"

// Prompts instruct the model to answer with bare JSON only. The payload
// extractor still tolerates fences and commentary because models do not
// always comply.

// BuildInvoicePrompt composes the Vietnamese VAT-invoice extraction prompt.
// When text is empty the prompt targets an attached invoice image instead.
func BuildInvoicePrompt(text, additionalContext string) string {
	var b strings.Builder
	b.WriteString("Bạn là chuyên gia phân tích hóa đơn Việt Nam. ")
	if text != "" {
		b.WriteString("Trích xuất CHÍNH XÁC thông tin từ text hóa đơn dưới đây.\n\n")
		if additionalContext != "" {
			b.WriteString("BỐI CẢNH BỔ SUNG:\n" + additionalContext + "\n\n")
		}
		b.WriteString("NỘI DUNG HÓA ĐƠN:\n" + text + "\n\n")
	} else {
		b.WriteString("Trích xuất CHÍNH XÁC mọi thông tin từ ảnh hóa đơn đính kèm.\n\n")
	}
	b.WriteString(`NGUYÊN TẮC:
- CHỈ trích xuất thông tin CÓ SẴN; nếu không tìm thấy -> null. KHÔNG bịa đặt, KHÔNG đoán.
- Số tiền: CHỈ GHI CHỮ SỐ, bỏ dấu phẩy, chấm, ký tự đơn vị ("1.000.000đ" -> 1000000).
- Ngày tháng: format "YYYY-MM-DD" (27/01/2024 -> "2024-01-27").
- MST: chỉ số, 10-13 chữ số. Hóa đơn có 2 MST KHÁC NHAU: MST người bán ở phần đầu,
  MST người mua ở phần thân. KIỂM TRA: seller_tax_code PHẢI KHÁC buyer_tax_code.
- Kiểm tra cuối: quantity × unit_price = amount; tổng các amount ≈ total_amount_without_vat;
  total_amount_without_vat + total_vat_amount = total_amount.

FORMAT JSON TRẢ VỀ:
{
  "seller_legal_name": null, "seller_tax_code": null, "seller_address": null,
  "inv_series": null, "inv_date": null, "payment_method_name": "TM/CK",
  "buyer_legal_name": null, "buyer_tax_code": null, "buyer_address": null,
  "buyer_phone_number": null, "buyer_email": null,
  "items": [
    {"line_number": 1, "item_name": null, "unit_name": null,
     "quantity": 0, "unit_price": 0, "amount": 0, "vat_rate": "10%", "vat_amount": 0}
  ],
  "total_amount_without_vat": 0, "total_vat_amount": 0, "total_amount": 0,
  "total_amount_in_words": null,
  "needs_review": false, "review_notes": null
}

CHỈ TRẢ VỀ JSON, KHÔNG CÓ TEXT GIẢI THÍCH, KHÔNG CÓ MARKDOWN.`)
	return b.String()
}

// BuildOrderPrompt composes the customer-order recognition prompt used on
// free-form order messages (chat, email, SMS). The model is told to ignore
// greetings, emoji and unrelated questions and report them in
// noise_detected.
func BuildOrderPrompt(text, additionalContext string) string {
	var b strings.Builder
	b.WriteString("Bạn là chuyên gia nhận diện đơn đặt hàng từ tin nhắn. " +
		"Công cụ dành cho NGƯỜI BÁN: chỉ trích xuất thông tin KHÁCH HÀNG (người đặt hàng).\n\n")
	if text != "" {
		b.WriteString("TEXT TIN NHẮN:\n" + text + "\n\n")
		if additionalContext != "" {
			b.WriteString("THÔNG TIN BỔ SUNG TỪ USER:\n" + additionalContext + "\n\n")
		}
	} else {
		b.WriteString("Nhận diện đơn hàng từ ảnh screenshot tin nhắn đính kèm.\n\n")
	}
	b.WriteString(`XỬ LÝ NHIỄU:
- BỎ QUA lời chào ("Chào shop", "Hi"), câu hỏi ("Còn hàng không?"), emoji, cảm ơn,
  timestamp, tên app. LƯU các cụm bỏ qua vào noise_detected.
- CHỈ trích xuất: tên/SĐT/địa chỉ khách, danh sách sản phẩm (tên, số lượng, giá),
  mã đơn, ngày đặt, thanh toán.

GIÁ TIỀN: "20tr"/"20 triệu" -> 20000000; "500k"/"500 nghìn" -> 500000;
"1.000.000đ" -> 1000000. CHỈ GHI SỐ THUẦN TÚY.
SĐT: 10-11 chữ số, bỏ dấu chấm/gạch ngang. Ngày: "YYYY-MM-DD".
customer_type: "individual" hoặc "business"; business_name/business_address
chỉ khi là doanh nghiệp. Nếu thiếu thông tin quan trọng -> needs_review = true.

FORMAT JSON TRẢ VỀ:
{
  "customer_type": null, "customer_name": null, "business_name": null,
  "customer_tax_code": null, "customer_phone": null, "customer_address": null,
  "business_address": null, "customer_email": null,
  "order_id": null, "order_date": null, "payment_method": null, "notes": null,
  "items": [
    {"line_number": 1, "product_name": null, "quantity": 0,
     "unit_price": null, "total_price": null, "notes": null}
  ],
  "total_amount": null,
  "needs_review": false, "review_notes": null, "noise_detected": []
}

CHỈ TRẢ VỀ JSON, KHÔNG CÓ TEXT GIẢI THÍCH, KHÔNG CÓ MARKDOWN.`)
	return b.String()
}
