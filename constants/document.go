package constants

import "strings"

// DocumentKind selects which extraction schema a job runs under.
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindOrder   DocumentKind = "order"
)

// Domain defaults shared by the normalizer and the assemblers.
const (
	DefaultCurrencyCode  = "VND"
	DefaultVATRateName   = "10%"
	DefaultPaymentMethod = "TM/CK"
)

// Tax-code and phone-number digit lengths considered valid in Vietnamese
// documents. Out-of-range values are kept but flagged for review.
const (
	TaxCodeMinDigits = 10
	TaxCodeMaxDigits = 13
	PhoneMinDigits   = 10
	PhoneMaxDigits   = 11
)

// AllowedExtensions holds the upload file extensions accepted by the API.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"pdf":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
