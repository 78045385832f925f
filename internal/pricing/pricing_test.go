package pricing

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/config"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	return NewClient(&config.Config{PriceAPIURL: server.URL}), server
}

func TestSpotPrice(t *testing.T) {
	client, server := newTestClient(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", request.URL.Path)
		assert.Equal(t, "shiba-inu", request.URL.Query().Get("ids"))
		assert.Equal(t, "usd", request.URL.Query().Get("vs_currencies"))
		fmt.Fprint(writer, `{"shiba-inu": {"usd": 0.0000125}}`)
	})
	defer server.Close()

	price, err := client.SpotPrice("Shiba Inu")
	require.NoError(t, err)

	assert.True(t, price.Equal(decimal.RequireFromString("0.0000125")))
}

func TestSpotPriceErrorStatus(t *testing.T) {
	client, server := newTestClient(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "rate limited", http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := client.SpotPrice("Bitcoin")

	require.Error(t, err)
	assert.Equal(t, apperror.KindInfrastructure, apperror.KindOf(err))
}

func TestSpotPriceMalformedBody(t *testing.T) {
	client, server := newTestClient(func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, "<html>definitely not json</html>")
	})
	defer server.Close()

	_, err := client.SpotPrice("Bitcoin")

	require.Error(t, err)
	assert.Equal(t, apperror.KindInfrastructure, apperror.KindOf(err))
}

func TestSpotPriceMissingCoin(t *testing.T) {
	client, server := newTestClient(func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `{}`)
	})
	defer server.Close()

	_, err := client.SpotPrice("Bitcoin")

	require.Error(t, err)
	assert.Equal(t, apperror.KindInfrastructure, apperror.KindOf(err))
}

func TestSpotPriceConnectionRefused(t *testing.T) {
	client := NewClient(&config.Config{PriceAPIURL: "http://127.0.0.1:1"})

	_, err := client.SpotPrice("Bitcoin")

	require.Error(t, err)
	assert.Equal(t, apperror.KindInfrastructure, apperror.KindOf(err))
}
