package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

const (
	dateLayout       = "2006-01-02"
	stockLevelsRange = "StockLevels!A:F"
	uncategorized    = "uncategorized"
	maxHistoryLimit  = 500
)

// ErrHistoryUnavailable indicates no issuance journal is configured.
var ErrHistoryUnavailable = errors.New("issuance history is not configured")

// StockLister reads the current stock listing.
type StockLister interface {
	ListStocks(ctx context.Context) ([]models.StockItem, error)
}

// Store persists stock reports and serves the issuance journal.
type Store interface {
	SaveStockReport(ctx context.Context, report models.StockReport) error
	RecentIssuances(ctx context.Context, limit int64) ([]models.IssuanceRecord, error)
}

// SheetWriter appends rows to a spreadsheet range.
type SheetWriter interface {
	WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Alerter delivers a text alert to a recipient.
type Alerter interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Options tunes report generation.
type Options struct {
	LowStockThreshold int
	AlertRecipient    string
}

// Service builds the stock dashboards and the daily stock-level report.
// Store, sheet and alerter are optional.
type Service struct {
	lister  StockLister
	store   Store
	sheet   SheetWriter
	alerter Alerter
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(lister StockLister, store Store, sheet SheetWriter, alerter Alerter, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		lister:  lister,
		store:   store,
		sheet:   sheet,
		alerter: alerter,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// CurrentLevels fetches the stock listing and summarizes it.
func (s *Service) CurrentLevels(ctx context.Context) (models.StockReport, error) {
	items, err := s.lister.ListStocks(ctx)
	if err != nil {
		return models.StockReport{}, fmt.Errorf("load stock levels: %w", err)
	}
	return Summarize(items, s.opts.LowStockThreshold, s.now().UTC()), nil
}

// RecentIssuances returns the latest journaled issuances, newest first.
func (s *Service) RecentIssuances(ctx context.Context, limit int) ([]models.IssuanceRecord, error) {
	if s.store == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.store.RecentIssuances(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("load issuance history: %w", err)
	}
	return records, nil
}

// PublishDailyLevels snapshots current levels into the configured store and
// sheet and alerts on low stock. Each sink is attempted even if another fails.
func (s *Service) PublishDailyLevels(ctx context.Context, now time.Time) error {
	items, err := s.lister.ListStocks(ctx)
	if err != nil {
		return fmt.Errorf("load stock levels: %w", err)
	}

	report := Summarize(items, s.opts.LowStockThreshold, now.UTC())
	var errs []error

	if s.store != nil {
		if err := s.store.SaveStockReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("save stock report: %w", err))
		}
	}

	if s.sheet != nil && len(items) > 0 {
		if err := s.sheet.WriteRows(ctx, stockLevelsRange, levelRows(items, now)); err != nil {
			errs = append(errs, fmt.Errorf("write stock levels: %w", err))
		}
	}

	if s.alerter != nil && s.opts.AlertRecipient != "" && len(report.LowStock) > 0 {
		if _, err := s.alerter.SendText(ctx, s.opts.AlertRecipient, FormatLowStockAlert(report, now)); err != nil {
			errs = append(errs, fmt.Errorf("send low stock alert: %w", err))
		}
	}

	s.logger.Info("daily stock levels published",
		zap.Int("items", report.ItemCount),
		zap.Int("low_stock", len(report.LowStock)),
		zap.Int("errors", len(errs)))

	return errors.Join(errs...)
}

// Summarize aggregates a stock listing. Items at or below threshold are
// reported as low stock, lowest first.
func Summarize(items []models.StockItem, threshold int, generatedAt time.Time) models.StockReport {
	report := models.StockReport{
		GeneratedAt: generatedAt,
		ItemCount:   len(items),
		Threshold:   threshold,
		Categories:  []models.CategoryLevel{},
		LowStock:    []models.LowStockItem{},
	}

	total := decimal.Zero
	byCategory := make(map[string]*models.CategoryLevel)

	for _, item := range items {
		report.TotalUnits += item.Quantity
		total = total.Add(item.PricePerUnit.Mul(decimal.NewFromInt(int64(item.Quantity))))

		category := strings.TrimSpace(item.Category)
		if category == "" {
			category = uncategorized
		}
		level, ok := byCategory[category]
		if !ok {
			level = &models.CategoryLevel{Category: category}
			byCategory[category] = level
		}
		level.Items++
		level.Units += item.Quantity

		if item.Quantity <= threshold {
			report.LowStock = append(report.LowStock, models.LowStockItem{StockName: item.StockName, Quantity: item.Quantity})
		}
	}

	for _, level := range byCategory {
		report.Categories = append(report.Categories, *level)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})
	sort.SliceStable(report.LowStock, func(i, j int) bool {
		return report.LowStock[i].Quantity < report.LowStock[j].Quantity
	})

	report.TotalValue = total.StringFixed(2)
	return report
}

// FormatLowStockAlert renders the alert text sent to the stock manager.
func FormatLowStockAlert(report models.StockReport, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Low stock alert (%s): %d item(s) at or below %d units.", now.Format(dateLayout), len(report.LowStock), report.Threshold)
	for _, item := range report.LowStock {
		fmt.Fprintf(&b, "\n- %s: %d", item.StockName, item.Quantity)
	}
	return b.String()
}

func levelRows(items []models.StockItem, now time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(items))
	day := now.Format(dateLayout)
	for _, item := range items {
		rows = append(rows, []interface{}{day, item.StockName, item.Category, item.SupplierName, item.Quantity, item.PricePerUnit.String()})
	}
	return rows
}
