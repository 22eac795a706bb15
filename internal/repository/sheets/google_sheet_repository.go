package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

// IssuancesRange is where the issuance ledger is appended.
const IssuancesRange = "Issuances!A:J"

var errEmptyRange = errors.New("sheetRange must not be empty")

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	RecordIssuance(ctx context.Context, record models.IssuanceRecord) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope)}
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	return r.WriteRows(ctx, sheetRange, [][]interface{}{values})
}

// WriteRows appends several rows in a single call.
func (r *GoogleSheetRepository) WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// RecordIssuance appends one ledger row for an issuance attempt.
func (r *GoogleSheetRepository) RecordIssuance(ctx context.Context, record models.IssuanceRecord) error {
	return r.WriteRow(ctx, IssuancesRange, issuanceRow(record))
}

func issuanceRow(record models.IssuanceRecord) []interface{} {
	return []interface{}{
		record.RecordedAt.Format("2006-01-02 15:04:05"),
		record.AttemptID,
		record.StockName,
		record.Quantity,
		record.RecipientName,
		record.Purpose,
		record.DateOfIssue,
		string(record.Outcome),
		record.ErrorKind,
		record.Reason,
	}
}
