package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyFigures are the headline numbers of one Summary row.
type DailyFigures struct {
	Date           string          `json:"date"`
	Turnover       decimal.Decimal `json:"ciro"`
	PackageCount   decimal.Decimal `json:"paketAdet"`
	PackageAverage decimal.Decimal `json:"paketAverage"`
}

// DailyReport represents the aggregated daily data archived in MongoDB.
type DailyReport struct {
	Date           string    `bson:"date" json:"date"`
	Turnover       float64   `bson:"turnover" json:"turnover"`
	Purchases      float64   `bson:"purchases" json:"purchases"`
	Payments       float64   `bson:"payments" json:"payments"`
	CashRemaining  float64   `bson:"cash_remaining" json:"cash_remaining"`
	CreditCard     float64   `bson:"credit_card" json:"credit_card"`
	PackageCount   float64   `bson:"package_count" json:"package_count"`
	PackageAverage float64   `bson:"package_average" json:"package_average"`
	ProductLines   int       `bson:"product_lines" json:"product_lines"`
	PaymentLines   int       `bson:"payment_lines" json:"payment_lines"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
