package models

import "time"

// StockReport represents a stock-level summary, served on the dashboard and
// stored daily in MongoDB.
type StockReport struct {
	GeneratedAt time.Time       `bson:"generated_at" json:"generatedAt"`
	ItemCount   int             `bson:"item_count" json:"itemCount"`
	TotalUnits  int             `bson:"total_units" json:"totalUnits"`
	TotalValue  string          `bson:"total_value" json:"totalValue"`
	Threshold   int             `bson:"threshold" json:"threshold"`
	Categories  []CategoryLevel `bson:"categories" json:"categories"`
	LowStock    []LowStockItem  `bson:"low_stock" json:"lowStock"`
}

// CategoryLevel aggregates stock for one category.
type CategoryLevel struct {
	Category string `bson:"category" json:"category"`
	Items    int    `bson:"items" json:"items"`
	Units    int    `bson:"units" json:"units"`
}

// LowStockItem is an item at or below the low-stock threshold.
type LowStockItem struct {
	StockName string `bson:"stock_name" json:"stockName"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}
