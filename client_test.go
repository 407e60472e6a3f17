package currencyquote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/damon-houk/currency-quote/internal/config"
	"github.com/damon-houk/currency-quote/internal/infrastructure/fakeapi"
	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
	"github.com/damon-houk/currency-quote/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func fixedClock() time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
}

func testConfig(baseURL string) *Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.Retry.Quotes.BaseDelay = time.Millisecond
	cfg.Retry.Validator.BaseDelay = time.Millisecond
	cfg.History.Timezone = "UTC"
	return cfg
}

func newTestClient(t *testing.T, input interface{}, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithConfig(testConfig(baseURL)),
		WithLogger(logger.NewJSONLogger(io.Discard, logger.ErrorLevel)),
		WithClock(fixedClock),
	}, opts...)

	client, err := New(input, opts...)
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Run("Construction errors", func(t *testing.T) {
		tests := []struct {
			name  string
			input interface{}
			err   error
			kind  error
		}{
			{"Wrong type", 42, ErrInputType, ErrType},
			{"Empty list", []string{}, ErrEmptyList, ErrValue},
			{"Missing hyphen", "USDBRL", ErrPairFormat, ErrValue},
			{"Short code", []string{"USD-BRL", "US-BRL"}, ErrCodeLength, ErrValue},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				client, err := New(tc.input)
				assert.Nil(t, client)
				assert.ErrorIs(t, err, tc.err)
				assert.ErrorIs(t, err, tc.kind)
			})
		}
	})

	t.Run("Invalid timezone", func(t *testing.T) {
		cfg := testConfig("http://example.invalid")
		cfg.History.Timezone = "Mars/Olympus_Mons"

		_, err := New("USD-BRL", WithConfig(cfg))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid history timezone")
	})

	t.Run("Invalid log level", func(t *testing.T) {
		cfg := testConfig("http://example.invalid")
		cfg.Logging.Level = "loud"

		_, err := New("USD-BRL", WithConfig(cfg))
		assert.Error(t, err)
	})

	t.Run("Keeps pairs", func(t *testing.T) {
		client, err := New([]interface{}{"USD-BRL", "EUR-BRL"})
		require.NoError(t, err)
		assert.Equal(t, []string{"USD-BRL", "EUR-BRL"}, client.Currency().Pairs())
	})
}

func TestClient_ValidateCurrency(t *testing.T) {
	upstream := fakeapi.NewWithDefaults()
	server := upstream.Start()
	defer server.Close()
	ctx := context.Background()

	t.Run("Filters unsupported pairs in order", func(t *testing.T) {
		client := newTestClient(t, []string{"USD-BRLT", "AAA-BBB", "EUR-BRL"}, server.URL)

		validated, err := client.ValidateCurrency(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"USD-BRLT", "EUR-BRL"}, validated.Pairs())
	})

	t.Run("Duplicates pass through", func(t *testing.T) {
		client := newTestClient(t, []string{"USD-BRL", "USD-BRL"}, server.URL)

		validated, err := client.ValidateCurrency(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"USD-BRL", "USD-BRL"}, validated.Pairs())
	})

	t.Run("All invalid", func(t *testing.T) {
		client := newTestClient(t, "AAA-BBB", server.URL)

		_, err := client.ValidateCurrency(ctx)
		assert.ErrorIs(t, err, ErrAllInvalid)
		assert.Equal(t, "all params are invalid", err.Error())
	})
}

func TestClient_GetLastQuote(t *testing.T) {
	upstream := fakeapi.NewWithDefaults()
	server := upstream.Start()
	defer server.Close()
	ctx := context.Background()

	t.Run("Partial validity", func(t *testing.T) {
		client := newTestClient(t, []string{"AAA-BBB", "USD-BRL", "EUR-BRL"}, server.URL)

		quotes, err := client.GetLastQuote(ctx)
		require.NoError(t, err)
		require.Len(t, quotes, 2)

		assert.Equal(t, "USD-BRL", quotes[0].CurrencyPair)
		assert.Equal(t, "USD", quotes[0].BaseCurrencyCode)
		assert.Equal(t, "BRL", quotes[0].QuoteCurrencyCode)
		assert.Equal(t, int64(1614024000), quotes[0].QuoteTimestamp)
		assert.True(t, decimal.RequireFromString("5.0876").Equal(quotes[0].BidPrice))
		assert.True(t, decimal.RequireFromString("5.0891").Equal(quotes[0].AskPrice))
		assert.Equal(t, "EUR-BRL", quotes[1].CurrencyPair)
	})

	t.Run("All invalid never fetches quotes", func(t *testing.T) {
		client := newTestClient(t, "AAA-BBB", server.URL)
		before := upstream.Calls(fakeapi.RouteLast)

		quotes, err := client.GetLastQuote(ctx)
		assert.Nil(t, quotes)
		assert.ErrorIs(t, err, ErrAllInvalid)
		assert.Equal(t, before, upstream.Calls(fakeapi.RouteLast))
	})

	t.Run("Validator outage is a transport error", func(t *testing.T) {
		upstream.FailNext(fakeapi.RouteAvailable, http.StatusServiceUnavailable, 3)
		client := newTestClient(t, "USD-BRL", server.URL)
		before := upstream.Calls(fakeapi.RouteAvailable)

		_, err := client.GetLastQuote(ctx)

		var qerr *Error
		require.True(t, errors.As(err, &qerr))
		assert.Equal(t, KindTransport, qerr.Kind)
		assert.Equal(t, before+3, upstream.Calls(fakeapi.RouteAvailable))
	})
}

func TestClient_GetHistoryQuote(t *testing.T) {
	upstream := fakeapi.NewWithDefaults()
	server := upstream.Start()
	defer server.Close()
	ctx := context.Background()

	t.Run("Past date", func(t *testing.T) {
		client := newTestClient(t, []string{"USD-BRL", "AAA-BBB"}, server.URL)

		quotes, err := client.GetHistoryQuote(ctx, 20220621)
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.Equal(t, "USD-BRL", quotes[0].CurrencyPair)
		assert.True(t, decimal.RequireFromString("5.0876").Equal(quotes[0].BidPrice))
	})

	t.Run("Rejected dates make no upstream calls", func(t *testing.T) {
		client := newTestClient(t, "USD-BRL", server.URL)
		available := upstream.Calls(fakeapi.RouteAvailable)
		daily := upstream.Calls(fakeapi.RouteDaily)

		for _, date := range []int{20250101, 20250102, 2022062, 202206210} {
			quotes, err := client.GetHistoryQuote(ctx, date)
			require.NoError(t, err)
			assert.NotNil(t, quotes)
			assert.Empty(t, quotes)
		}

		assert.Equal(t, available, upstream.Calls(fakeapi.RouteAvailable))
		assert.Equal(t, daily, upstream.Calls(fakeapi.RouteDaily))
	})

	t.Run("Today follows the configured timezone", func(t *testing.T) {
		// 01:00 UTC on Jan 2 is still Jan 1 in Sao Paulo
		clock := func() time.Time { return time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC) }

		cfg := testConfig(server.URL)
		cfg.History.Timezone = "America/Sao_Paulo"
		client := newTestClient(t, "USD-BRL", server.URL, WithConfig(cfg), WithClock(clock))
		available := upstream.Calls(fakeapi.RouteAvailable)

		quotes, err := client.GetHistoryQuote(ctx, 20250101)
		require.NoError(t, err)
		assert.Empty(t, quotes)
		assert.Equal(t, available, upstream.Calls(fakeapi.RouteAvailable))
	})

	t.Run("Missing history is a transport error", func(t *testing.T) {
		client := newTestClient(t, "EUR-BRL", server.URL)

		quotes, err := client.GetHistoryQuote(ctx, 20220621)
		assert.Nil(t, quotes)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestClient_Instrumentation(t *testing.T) {
	upstream := fakeapi.NewWithDefaults()
	server := upstream.Start()
	defer server.Close()

	var logs bytes.Buffer
	log := logger.NewJSONLogger(&logs, logger.DebugLevel)
	reg := prometheus.NewRegistry()
	metrics := observability.NewPrometheusMetrics(reg, "test")
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	client := newTestClient(t, "USD-BRL", server.URL,
		WithLogger(log),
		WithTracer(NewOtelTracer(provider)),
		WithMetrics(metrics),
	)

	_, err := client.GetLastQuote(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CallsTotal.WithLabelValues("get_last_quote")))

	headers := upstream.LastHeaders()
	sent := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(
		context.Background(), propagation.HeaderCarrier(headers)))
	assert.True(t, sent.IsValid())
	assert.NotEmpty(t, headers.Get("X-Request-ID"))

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "currency_validator_api.validate_currency_code", spans[0].Name())
	assert.Equal(t, "currency_api.get_last_quote", spans[1].Name())
	assert.Equal(t, "get_last_quote", spans[2].Name())
	for _, span := range spans {
		assert.Equal(t, sent.TraceID(), span.SpanContext().TraceID())
	}
	assert.Equal(t, sent.SpanID(), spans[1].SpanContext().SpanID())

	output := logs.String()
	assert.True(t, strings.Contains(output, `"message":"Operation completed"`))
	assert.True(t, strings.Contains(output, headers.Get("X-Request-ID")))
}

func TestClient_PartialConfig(t *testing.T) {
	upstream := fakeapi.NewWithDefaults()
	server := upstream.Start()
	defer server.Close()

	cfg := &Config{
		API:   APIConfig{BaseURL: server.URL},
		Retry: RetryConfig{Validator: RetryPolicy{BaseDelay: time.Millisecond}},
	}

	client, err := New("USD-BRL",
		WithConfig(cfg),
		WithLogger(logger.NewJSONLogger(io.Discard, logger.ErrorLevel)),
	)
	require.NoError(t, err)

	t.Run("Retries with default attempts", func(t *testing.T) {
		upstream.FailNext(fakeapi.RouteAvailable, http.StatusServiceUnavailable, 1)
		before := upstream.Calls(fakeapi.RouteAvailable)

		validated, err := client.ValidateCurrency(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"USD-BRL"}, validated.Pairs())
		assert.Equal(t, before+2, upstream.Calls(fakeapi.RouteAvailable))
	})

	t.Run("Caller config is left untouched", func(t *testing.T) {
		assert.Equal(t, server.URL, cfg.API.BaseURL)
		assert.Zero(t, cfg.API.Timeout)
		assert.Zero(t, cfg.Retry.Validator.MaxAttempts)
		assert.Empty(t, cfg.Logging.Level)
		assert.Empty(t, cfg.History.Timezone)
	})

	t.Run("Without a logger", func(t *testing.T) {
		_, err := New("USD-BRL", WithConfig(&Config{API: APIConfig{BaseURL: server.URL}}))
		assert.NoError(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Local", cfg.History.Timezone)
	assert.Equal(t, 3, cfg.Retry.Quotes.MaxAttempts)

	loaded, err := LoadConfig("")
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.API.BaseURL)
}
