package stockapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

const (
	stocksPath = "/api/stocks"
	outPath    = "/api/out"
	addPath    = "/api/add"
)

// Client exposes the inventory server operations used by the application.
type Client interface {
	ListStocks(ctx context.Context) ([]models.StockItem, error)
	IssueStock(ctx context.Context, req models.IssuanceRequest) (*models.IssueResponse, error)
	AddStock(ctx context.Context, entry models.StockEntry) (*AddStockResponse, error)
}

// APIClient is a resty-backed implementation of Client. It never retries.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an inventory API client using the provided configuration values.
func NewClient(cfg config.StockAPIConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{httpClient: restyClient}
}

// AddStockResponse describes a completed POST /api/add exchange.
type AddStockResponse struct {
	StatusCode int
	Status     string
	Message    string
}

type apiError struct {
	Message string `json:"message"`
}

type issuePayload struct {
	StockName     string `json:"stockName"`
	Quantity      int    `json:"quantity"`
	RecipientName string `json:"recipientName"`
	Purpose       string `json:"purpose"`
	DateOfIssue   string `json:"dateOfIssue"`
}

type addPayload struct {
	StockName    string  `json:"stockName"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity"`
	SupplierName string  `json:"supplierName"`
	Category     string  `json:"category"`
	PricePerUnit float64 `json:"pricePerUnit"`
}

// ListStocks fetches the full stock listing.
func (c *APIClient) ListStocks(ctx context.Context) ([]models.StockItem, error) {
	var items []models.StockItem
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&items).
		SetError(apiErr).
		Get(stocksPath)
	if err = checkResponse("list stocks", resp, err, apiErr); err != nil {
		return nil, err
	}

	return items, nil
}

// IssueStock posts an out-stock issuance. A 2xx response is returned as-is;
// interpreting the message is left to the caller.
func (c *APIClient) IssueStock(ctx context.Context, req models.IssuanceRequest) (*models.IssueResponse, error) {
	result := new(models.IssueResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(issuePayload(req)).
		SetResult(result).
		SetError(apiErr).
		Post(outPath)
	if err = checkResponse("issue stock", resp, err, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// AddStock records incoming stock.
func (c *APIClient) AddStock(ctx context.Context, entry models.StockEntry) (*AddStockResponse, error) {
	payload := addPayload{
		StockName:    entry.StockName,
		Description:  entry.Description,
		Quantity:     entry.Quantity,
		SupplierName: entry.SupplierName,
		Category:     entry.Category,
		PricePerUnit: entry.PricePerUnit.InexactFloat64(),
	}

	result := new(apiError)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(addPath)
	if err = checkResponse("add stock", resp, err, apiErr); err != nil {
		return nil, err
	}

	return &AddStockResponse{
		StatusCode: resp.StatusCode(),
		Status:     statusText(resp),
		Message:    result.Message,
	}, nil
}

func checkResponse(op string, resp *resty.Response, err error, apiErr *apiError) error {
	if err != nil {
		if resp != nil && resp.RawResponse != nil {
			// The server answered but the body could not be decoded.
			return &Error{Op: op, StatusCode: resp.StatusCode(), Message: "malformed response body", Err: err}
		}
		return &Error{Op: op, Err: fmt.Errorf("%w: %w", ErrNoResponse, err)}
	}

	if !resp.IsSuccess() {
		message := ""
		if apiErr != nil {
			message = apiErr.Message
		}
		return &Error{Op: op, StatusCode: resp.StatusCode(), Message: message}
	}

	return nil
}

func statusText(resp *resty.Response) string {
	if text := http.StatusText(resp.StatusCode()); text != "" {
		return text
	}
	return resp.Status()
}
