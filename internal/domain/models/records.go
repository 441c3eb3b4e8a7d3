package models

import "github.com/shopspring/decimal"

// Product is one purchase line of the Products sheet.
type Product struct {
	ID          string          `json:"id"`
	Date        string          `json:"date" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Name        string          `json:"name"`
	Quantity    string          `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	PaymentType string          `json:"paymentType"`
	Info        string          `json:"info"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// Payment is one received payment of the Payments sheet.
type Payment struct {
	ID          string          `json:"id"`
	Date        string          `json:"date" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	CheckNo     string          `json:"checkNo"`
	CheckName   string          `json:"checkName"`
	PaymentType string          `json:"paymentType"`
	Info        string          `json:"info"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// CashTotal is the end-of-day reconciliation of the EndOfDay sheet.
type CashTotal struct {
	ID         string          `json:"id"`
	Date       string          `json:"date" binding:"required"`
	Remaining  decimal.Decimal `json:"remaining"`
	CreditCard decimal.Decimal `json:"creditCard"`
	QRCode     decimal.Decimal `json:"qrCode"`
	EBill      decimal.Decimal `json:"eBill"`
	Info       string          `json:"info"`
	ImageURL   string          `json:"imageUrl,omitempty"`
}

// ImageUpload carries raw image bytes for a record write.
type ImageUpload struct {
	Data     []byte
	MIMEType string
}

// SaveResult acknowledges a record write.
type SaveResult struct {
	ID       string   `json:"id,omitempty"`
	Date     string   `json:"date"`
	Row      int      `json:"row"`
	Created  bool     `json:"created"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
