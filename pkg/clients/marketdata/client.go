package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/config"
)

// Client exposes the saleyard market feed operations used by the application.
type Client interface {
	FetchQuotes(ctx context.Context, categories []string) ([]Quote, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a market feed client using the provided configuration values.
func NewClient(cfg config.MarketFeedConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.APIKey != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &APIClient{httpClient: restyClient}
}

// Quote is one liveweight price observation as published by the feed.
type Quote struct {
	Category      string  `json:"category"`
	Breed         string  `json:"breed"`
	Venue         string  `json:"saleyard"`
	Region        string  `json:"region"`
	PricePerKg    float64 `json:"price_per_kg"`
	EffectiveDate string  `json:"quote_date"`
	Source        string  `json:"source"`
}

type quotesResponse struct {
	Quotes []Quote `json:"quotes"`
}

// apiError represents a market feed error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// FetchQuotes pulls the latest liveweight quotes, optionally narrowed to the
// given categories.
func (c *APIClient) FetchQuotes(ctx context.Context, categories []string) ([]Quote, error) {
	result := new(quotesResponse)
	apiErr := new(apiError)

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr)
	if len(categories) > 0 {
		req.SetQueryParam("categories", strings.Join(categories, ","))
	}

	resp, err := req.Get("/v1/quotes")
	if err != nil {
		return nil, fmt.Errorf("fetch market quotes: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Error.Message
			if apiErr.Error.Code != 0 {
				code = apiErr.Error.Code
			}
		}
		return nil, fmt.Errorf("market feed api error: code=%d, message=%s", code, message)
	}

	return result.Quotes, nil
}
