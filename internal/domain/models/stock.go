package models

import "github.com/shopspring/decimal"

// StockItem is one row of the remote stock listing. Clients hold it as a
// read-only snapshot.
type StockItem struct {
	StockName    string          `json:"stockName"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	SupplierName string          `json:"supplierName"`
	Category     string          `json:"category"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

// StockEntry captures incoming stock recorded through the entry form.
type StockEntry struct {
	StockName    string          `json:"stockName" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	Quantity     int             `json:"quantity"`
	SupplierName string          `json:"supplierName" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}
