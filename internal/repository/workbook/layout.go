package workbook

// LinkText is the display text of every attachment hyperlink cell.
const LinkText = "Fotoğraf Linki"

// Column letters of the Products sheet.
const (
	ProductDate     = "A"
	ProductCategory = "B"
	ProductName     = "C"
	ProductQuantity = "D"
	ProductPrice    = "E"
	ProductPayment  = "F"
	ProductInfo     = "G"
	ProductImage    = "H"
	ProductID       = "I"
)

// Column letters of the Payments sheet.
const (
	PaymentDate     = "A"
	PaymentPrice    = "B"
	PaymentCheckNo  = "C"
	PaymentCheck    = "D"
	PaymentType     = "E"
	PaymentInfo     = "F"
	PaymentImage    = "G"
	PaymentID       = "H"
)

// Column letters of the CashTotals sheet.
const (
	CashDate       = "A"
	CashRemaining  = "B"
	CashCreditCard = "C"
	CashQRCode     = "D"
	CashEBill      = "E"
	CashInfo       = "F"
	CashImage      = "G"
	CashID         = "H"
)

var (
	ProductsLayout = Layout{
		Name:        "Products",
		Headers:     []string{"Tarih", "Katagori", "Ürün Adı", "Adet/Kg", "Fiyat", "Ödeme Türü", "Ek Bilgi", "Fotoğraf", "ID"},
		Widths:      []float64{12, 16, 16, 8, 8, 15, 25, 15, 38},
		DateColumn:  ProductDate,
		IDColumn:    ProductID,
		ImageColumn: ProductImage,
	}

	PaymentsLayout = Layout{
		Name:        "Payments",
		Headers:     []string{"Tarih", "Fiyat", "Adisyon No", "Adisyon Adı", "Ödeme Türü", "Ek Bilgi", "Fotoğraf", "ID"},
		Widths:      []float64{12, 8, 16, 12, 15, 25, 15, 38},
		DateColumn:  PaymentDate,
		IDColumn:    PaymentID,
		ImageColumn: PaymentImage,
	}

	CashTotalsLayout = Layout{
		Name:        "EndOfDay",
		Headers:     []string{"Tarih", "Kalan", "Kredi Kartı", "Kare Kod", "e-Fatura", "Ek Bilgi", "Fotoğraf", "ID"},
		Widths:      []float64{12, 10, 10, 10, 10, 25, 15, 38},
		DateColumn:  CashDate,
		IDColumn:    CashID,
		ImageColumn: CashImage,
	}
)
