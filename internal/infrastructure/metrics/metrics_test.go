package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Stock(t *testing.T) {
	r := New()

	r.StockIncreased(decimal.RequireFromString("12.5"))
	r.StockIncreased(decimal.NewFromInt(2))
	r.StockDecreased(decimal.NewFromInt(4))
	r.StockRejected()
	r.ReconciliationGap()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.movements.WithLabelValues("in")))
	assert.Equal(t, 14.5, testutil.ToFloat64(r.movementAmount.WithLabelValues("in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.movements.WithLabelValues("out")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.movementAmount.WithLabelValues("out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.gaps))
}

func TestRegistry_HTTP(t *testing.T) {
	r := New()

	r.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.inFlight))
	r.RequestFinished("POST", "/api/v1/outbound/add", 400, 30*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(r.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("POST", "/api/v1/outbound/add", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.requestDuration))
}

func TestRegistry_Handler(t *testing.T) {
	r := New()
	r.StockRejected()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "hazchem_stock_rejected_total 1"))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
