// Package currencyquote validates currency pairs against the quotation API and fetches their
// latest or historical quotes.
//
//	client, err := currencyquote.New([]string{"USD-BRL", "EUR-BRL"})
//	if err != nil {
//		return err
//	}
//	quotes, err := client.GetLastQuote(ctx)
package currencyquote

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/damon-houk/currency-quote/internal/application/usecase"
	"github.com/damon-houk/currency-quote/internal/config"
	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/damon-houk/currency-quote/internal/infrastructure/api"
	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
	"github.com/damon-houk/currency-quote/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/trace"
)

type (
	// CurrencyObject is a validated, ordered list of BASE-QUOTE pairs
	CurrencyObject = entity.CurrencyObject
	// CurrencyQuote is the quote of one pair at one instant
	CurrencyQuote = entity.CurrencyQuote
	// Error is returned by every operation; match it with errors.Is against the kind sentinels
	Error = entity.Error
	Kind  = entity.Kind

	// Config holds the client settings; zero fields take their defaults in New
	Config        = config.Config
	APIConfig     = config.APIConfig
	RetryConfig   = config.RetryConfig
	RetryPolicy   = config.RetryPolicy
	HistoryConfig = config.HistoryConfig
	LoggingConfig = config.LoggingConfig
	MetricsConfig = config.MetricsConfig

	// Logger receives structured log lines
	Logger = logger.Logger
	// Tracer opens a span per operation and per upstream call; see NewOtelTracer
	Tracer = observability.Tracer
	Span   = observability.Span
	// Metrics observes the outcome and duration of every operation
	Metrics = observability.Metrics
)

// Error kinds
const (
	KindType      = entity.KindType
	KindValue     = entity.KindValue
	KindTransport = entity.KindTransport
)

// Kind sentinels and specific failures, usable with errors.Is
var (
	ErrType      = entity.ErrType
	ErrValue     = entity.ErrValue
	ErrTransport = entity.ErrTransport

	ErrInputType  = entity.ErrInputType
	ErrEmptyList  = entity.ErrEmptyList
	ErrPairFormat = entity.ErrPairFormat
	ErrCodeLength = entity.ErrCodeLength
	ErrAllInvalid = entity.ErrAllInvalid
)

// DefaultConfig returns the configuration used when WithConfig is not given
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML file, fills in defaults and applies CURRENCY_QUOTE_* environment
// overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	return config.LoadConfig(path)
}

// NewOtelTracer returns a Tracer recording spans on an OpenTelemetry tracer provider and
// propagating them with W3C trace context headers
func NewOtelTracer(provider trace.TracerProvider) Tracer {
	return observability.NewOtelTracer(provider)
}

// NewCurrencyObject builds a CurrencyObject from a pair string or a list of pairs
func NewCurrencyObject(input interface{}) (CurrencyObject, error) {
	return entity.NewCurrencyObject(input)
}

// Option customizes a Client
type Option func(*options)

type options struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     logger.Logger
	tracer     observability.Tracer
	metrics    observability.Metrics
	clock      func() time.Time
}

// WithConfig replaces the default configuration. cfg is copied and its zero fields take
// their default values; cfg itself is never modified.
func WithConfig(cfg *Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithHTTPClient sets the HTTP client used for the quotation API; its transport is wrapped, not replaced
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithLogger sets the logger; by default a JSON logger on stderr at the configured level is used
func WithLogger(log Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithTracer sets the tracer; by default no spans are recorded
func WithTracer(tracer Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithMetrics sets the metrics recorder; by default nothing is recorded
func WithMetrics(metrics Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

// WithClock sets the clock used to decide what "today" is; its readings are taken in the
// configured history timezone
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// Client fetches quotes for a fixed list of pairs
type Client struct {
	currency CurrencyObject
	useCase  *usecase.QuoteUseCase
}

// New builds the CurrencyObject from input and wires the live collaborators
func New(input interface{}, opts ...Option) (*Client, error) {
	currency, err := entity.NewCurrencyObject(input)
	if err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := config.Default()
	if o.cfg != nil {
		copied := *o.cfg
		config.ApplyDefaults(&copied)
		cfg = &copied
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		level, err := logger.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging config: %w", err)
		}
		log = logger.NewJSONLogger(os.Stderr, level)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}

	now := o.clock
	if now == nil {
		now = time.Now
	}
	clock := func() time.Time { return now().In(loc) }

	client := api.NewClient(cfg.API.BaseURL, httpClient, log, o.tracer)

	quotePolicy := api.RetryPolicy{
		Strategy:    api.ExponentialRetry,
		MaxAttempts: cfg.Retry.Quotes.MaxAttempts,
		BaseDelay:   cfg.Retry.Quotes.BaseDelay,
	}
	validatorPolicy := api.RetryPolicy{
		Strategy:    api.LinearRetry,
		MaxAttempts: cfg.Retry.Validator.MaxAttempts,
		BaseDelay:   cfg.Retry.Validator.BaseDelay,
	}

	uc := usecase.NewQuoteUseCase(client.ValidatorFactory(validatorPolicy), client.RepositoryFactory(quotePolicy, clock), log).
		WithClock(clock).
		WithTracer(o.tracer).
		WithMetrics(o.metrics)

	return &Client{currency: currency, useCase: uc}, nil
}

// Currency returns the pairs the client was built with
func (c *Client) Currency() CurrencyObject {
	return c.currency
}

// ValidateCurrency returns the pairs supported by the quotation API, failing with
// ErrAllInvalid when there are none
func (c *Client) ValidateCurrency(ctx context.Context) (CurrencyObject, error) {
	return c.useCase.ValidateCurrency(ctx, c.currency)
}

// GetLastQuote returns the latest quote of every supported pair
func (c *Client) GetLastQuote(ctx context.Context) ([]CurrencyQuote, error) {
	return c.useCase.GetLastQuote(ctx, c.currency)
}

// GetHistoryQuote returns the quote of every supported pair on referenceDate (YYYYMMDD).
// A date that is not strictly before today yields an empty result and no error.
func (c *Client) GetHistoryQuote(ctx context.Context, referenceDate int) ([]CurrencyQuote, error) {
	return c.useCase.GetHistoryQuote(ctx, c.currency, referenceDate)
}
