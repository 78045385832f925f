// Package pricing looks up spot prices from the CoinGecko simple-price
// API. A price is fetched once per trade; any non-success response or
// unparseable body fails that trade without retrying.
package pricing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/config"
)

type Client struct {
	rest *resty.Client
}

// NewClient builds a price client against the configured API base URL.
func NewClient(settings *config.Config) *Client {
	rest := resty.New().
		SetBaseURL(settings.PriceAPIURL).
		SetTimeout(10 * time.Second)

	return &Client{rest: rest}
}

// SpotPrice returns the current price of the named currency in USD.
func (client *Client) SpotPrice(name string) (decimal.Decimal, error) {
	// CoinGecko IDs are lowercased, dash-separated coin names.
	coinID := strings.ToLower(strings.ReplaceAll(name, " ", "-"))

	response, err := client.rest.R().
		SetQueryParam("ids", coinID).
		SetQueryParam("vs_currencies", "usd").
		Get("/api/v3/simple/price")

	if err != nil {
		return decimal.Zero, apperror.Infrastructure("price lookup failed", err)
	}

	if !response.IsSuccess() {
		return decimal.Zero, apperror.Infrastructure(
			fmt.Sprintf("price lookup returned status %d", response.StatusCode()),
			nil,
		)
	}

	var payload map[string]map[string]decimal.Decimal

	if err := json.Unmarshal(response.Body(), &payload); err != nil {
		return decimal.Zero, apperror.Infrastructure("malformed price response", err)
	}

	price, ok := payload[coinID]["usd"]

	if !ok {
		return decimal.Zero, apperror.Infrastructure("price missing from response for "+coinID, nil)
	}

	return price, nil
}
