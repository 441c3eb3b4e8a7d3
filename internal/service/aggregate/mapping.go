package aggregate

import "maps"

// Summary region start rows. Cash purchases and every payment or end-of-day
// figure live in the first table, non-cash purchases in the second.
const (
	CashRegionRow   = 2
	CreditRegionRow = 34
)

// CashPayment is the payment type routed to the cash region.
const CashPayment = "Nakit"

// Pages of the column mapping.
const (
	PageProducts = "Products"
	PagePayments = "Payments"
	PageEndOfDay = "EndOfDay"
)

// Names of the end-of-day figures in the EndOfDay page.
const (
	Remaining  = "Kalan"
	CreditCard = "Kredi Kartı"
	Packages   = "paket"
)

// Mapping resolves a category, payment type or figure name to the Summary
// column it aggregates into.
type Mapping map[string]string

// Column returns the mapped column letter, or false when the name is unmapped.
func (m Mapping) Column(name string) (string, bool) {
	col, ok := m[name]
	return col, ok && col != ""
}

// Columns returns every mapped column letter.
func (m Mapping) Columns() []string {
	cols := make([]string, 0, len(m))
	for _, col := range m {
		if col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

// Resolve overlays overrides onto defaults. Empty override letters are ignored.
func Resolve(defaults, overrides Mapping) Mapping {
	out := maps.Clone(defaults)
	if out == nil {
		out = Mapping{}
	}
	for name, col := range overrides {
		if col != "" {
			out[name] = col
		}
	}
	return out
}

// Defaults returns a copy of the built-in mapping for page, or nil when the
// page is unknown.
func Defaults(page string) Mapping {
	switch page {
	case PageProducts:
		return maps.Clone(defaultProducts)
	case PagePayments:
		return maps.Clone(defaultPayments)
	case PageEndOfDay:
		return maps.Clone(defaultEndOfDay)
	default:
		return nil
	}
}

// Pages lists the pages that carry a built-in mapping.
func Pages() []string {
	return []string{PageProducts, PagePayments, PageEndOfDay}
}

// RegionFor returns the Summary region a product paid with paymentType
// aggregates into.
func RegionFor(paymentType string) int {
	if paymentType == CashPayment {
		return CashRegionRow
	}
	return CreditRegionRow
}

var defaultProducts = Mapping{
	"SÜT":               "C",
	"ET-DANA":           "D",
	"ET-KUZU":           "E",
	"BEYAZ-ET":          "F",
	"EKMEK":             "G",
	"MARKET PAZAR RAMİ": "H",
	"PAÇA":              "I",
	"İŞKEMBE":           "J",
	"AMBALAJ MALZEMESİ": "K",
	"SU-ŞİŞE":           "L",
	"MEŞRUBAT":          "M",
	"TÜP":               "N",
	"MAZOT":             "O",
	"EKSTRA ELEMAN":     "P",
}

var defaultPayments = Mapping{
	"Havale":      "W",
	"Eski Bakiye": "X",
	"Veresiye":    "AA",
}

var defaultEndOfDay = Mapping{
	Remaining:  "R",
	CreditCard: "S",
	Packages:   "Y",
}
