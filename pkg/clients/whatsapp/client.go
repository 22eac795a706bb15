package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stockdesk/internal/config"
)

// ErrNoMessageID indicates Meta accepted the request without returning a message id.
var ErrNoMessageID = errors.New("whatsapp response carried no message id")

// APIError is a WhatsApp Cloud API failure.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d, code=%d, message=%s", e.StatusCode, e.Code, e.Message)
}

// AlertClient sends plain-text stock alerts through the WhatsApp Cloud API.
type AlertClient struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a WhatsApp alert client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *AlertClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &AlertClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiErrorBody struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// SendText delivers body to the recipient and returns Meta's message id.
func (c *AlertClient) SendText(ctx context.Context, to, body string) (string, error) {
	payload := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}

	result := new(sendResponse)
	apiErr := new(apiErrorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Code: apiErr.Error.Code, Message: apiErr.Error.Message}
	}

	if len(result.Messages) == 0 || result.Messages[0].ID == "" {
		return "", ErrNoMessageID
	}
	return result.Messages[0].ID, nil
}
