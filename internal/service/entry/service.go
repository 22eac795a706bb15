package entry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/pkg/clients/stockapi"
)

const (
	msgAdded         = "Stock added successfully!"
	msgInvalidQty    = "Quantity must be greater than 0"
	msgNoResponse    = "Request Error: No response from server. Please check your connection or server."
	msgServerDefault = "An error occurred"
)

// ErrInvalidQuantity indicates a non-positive entry quantity.
var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// Adder records incoming stock on the inventory server.
type Adder interface {
	AddStock(ctx context.Context, entry models.StockEntry) (*stockapi.AddStockResponse, error)
}

// Result is what the entry form shows after a submission.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service submits stock entries.
type Service struct {
	adder  Adder
	logger *zap.Logger
}

// NewService wires a new entry service instance.
func NewService(adder Adder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{adder: adder, logger: logger}
}

// Submit validates and sends an entry. The returned error is nil only when
// the server accepted the entry with 200 or 201.
func (s *Service) Submit(ctx context.Context, entry models.StockEntry) (Result, error) {
	if entry.Quantity <= 0 {
		return Result{Message: msgInvalidQty}, ErrInvalidQuantity
	}

	resp, err := s.adder.AddStock(ctx, entry)
	if err != nil {
		var apiErr *stockapi.Error
		switch {
		case errors.As(err, &apiErr) && apiErr.Transport():
			s.logger.Warn("stock entry got no response", zap.String("stock_name", entry.StockName), zap.Error(err))
			return Result{Message: msgNoResponse}, err
		case errors.As(err, &apiErr):
			message := apiErr.Message
			if message == "" {
				message = msgServerDefault
			}
			s.logger.Warn("stock entry rejected by server",
				zap.String("stock_name", entry.StockName),
				zap.Int("status", apiErr.StatusCode),
				zap.String("message", apiErr.Message))
			return Result{Message: "Server Error: " + message}, err
		default:
			s.logger.Error("stock entry failed", zap.String("stock_name", entry.StockName), zap.Error(err))
			return Result{Message: "Unexpected Error: " + err.Error()}, err
		}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		status := resp.Status
		if status == "" {
			status = "Unknown issue"
		}
		return Result{Message: "Unexpected Response: " + status}, fmt.Errorf("add stock: unexpected status %d", resp.StatusCode)
	}

	s.logger.Info("stock entry recorded", zap.String("stock_name", entry.StockName), zap.Int("quantity", entry.Quantity))
	return Result{Success: true, Message: msgAdded}, nil
}
