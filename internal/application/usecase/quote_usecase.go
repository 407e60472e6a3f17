// Package usecase internal/application/usecase/quote_usecase.go
package usecase

import (
	"context"
	"time"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/damon-houk/currency-quote/internal/domain/repository"
	"github.com/damon-houk/currency-quote/internal/domain/service"
	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
	"github.com/damon-houk/currency-quote/internal/infrastructure/middleware"
	"github.com/damon-houk/currency-quote/internal/infrastructure/observability"
	"github.com/google/uuid"
)

// Operation names used for spans and metrics
const (
	OperationValidate = "validate_currency"
	OperationLast     = "get_last_quote"
	OperationHistory  = "get_history_quote"
)

// QuoteUseCase is the entry point for validating pairs and fetching their quotes
type QuoteUseCase struct {
	newValidator  repository.ValidatorFactory
	newRepository repository.RepositoryFactory
	clock         func() time.Time
	logger        logger.Logger
	tracer        observability.Tracer
	metrics       observability.Metrics
}

// NewQuoteUseCase creates a new use case over the given collaborator factories
func NewQuoteUseCase(newValidator repository.ValidatorFactory, newRepository repository.RepositoryFactory, log logger.Logger) *QuoteUseCase {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &QuoteUseCase{
		newValidator:  newValidator,
		newRepository: newRepository,
		clock:         time.Now,
		logger:        log,
		tracer:        observability.NopTracer{},
		metrics:       observability.NopMetrics{},
	}
}

// WithClock sets the clock deciding what "today" is for history requests
func (u *QuoteUseCase) WithClock(clock func() time.Time) *QuoteUseCase {
	if clock != nil {
		u.clock = clock
	}
	return u
}

// WithTracer sets the tracer opening one span per call
func (u *QuoteUseCase) WithTracer(tracer observability.Tracer) *QuoteUseCase {
	if tracer != nil {
		u.tracer = tracer
	}
	return u
}

// WithMetrics sets the metrics recorder observing every call
func (u *QuoteUseCase) WithMetrics(metrics observability.Metrics) *QuoteUseCase {
	if metrics != nil {
		u.metrics = metrics
	}
	return u
}

// ValidateCurrency returns the subset of currency supported upstream
func (u *QuoteUseCase) ValidateCurrency(ctx context.Context, currency entity.CurrencyObject) (validated entity.CurrencyObject, err error) {
	ctx, finish := u.start(ctx, OperationValidate, currency)
	defer func() { finish(err) }()

	svc := service.NewCurrencyValidatorService(currency, u.newValidator(currency))
	return svc.ValidateCurrencyCode(ctx)
}

// GetLastQuote returns the latest quote for every supported pair in currency
func (u *QuoteUseCase) GetLastQuote(ctx context.Context, currency entity.CurrencyObject) (quotes []entity.CurrencyQuote, err error) {
	ctx, finish := u.start(ctx, OperationLast, currency)
	defer func() { finish(err) }()

	return u.quoteService(currency).Last(ctx)
}

// GetHistoryQuote returns the quote of every supported pair in currency on referenceDate (YYYYMMDD)
func (u *QuoteUseCase) GetHistoryQuote(ctx context.Context, currency entity.CurrencyObject, referenceDate int) (quotes []entity.CurrencyQuote, err error) {
	ctx, finish := u.start(ctx, OperationHistory, currency)
	defer func() { finish(err) }()

	return u.quoteService(currency).History(ctx, referenceDate)
}

func (u *QuoteUseCase) quoteService(currency entity.CurrencyObject) *service.GetCurrencyQuoteService {
	return service.NewGetCurrencyQuoteService(currency, u.newValidator, u.newRepository, u.logger).
		WithClock(u.clock)
}

// start tags ctx with a request id shared by every upstream call of the operation, opens a
// span and returns the function that closes it
func (u *QuoteUseCase) start(ctx context.Context, operation string, currency entity.CurrencyObject) (context.Context, func(error)) {
	requestID := middleware.GetRequestID(ctx)
	if requestID == "unknown" {
		requestID = uuid.New().String()
		ctx = middleware.WithRequestID(ctx, requestID)
	}

	ctx, span := u.tracer.Start(ctx, operation)
	span.SetAttribute("pairs", currency.String())
	span.SetAttribute("request_id", requestID)

	u.logger.Debug("Operation started", map[string]interface{}{
		"request_id": requestID,
		"operation":  operation,
		"pairs":      currency.String(),
	})

	startTime := time.Now()
	return ctx, func(err error) {
		duration := time.Since(startTime)
		u.metrics.Observe(operation, duration, err)
		span.End(err)

		if err != nil {
			u.logger.Error("Operation failed", map[string]interface{}{
				"request_id":  requestID,
				"operation":   operation,
				"duration_ms": duration.Milliseconds(),
				"error":       err.Error(),
			})
			return
		}

		u.logger.Info("Operation completed", map[string]interface{}{
			"request_id":  requestID,
			"operation":   operation,
			"duration_ms": duration.Milliseconds(),
		})
	}
}
