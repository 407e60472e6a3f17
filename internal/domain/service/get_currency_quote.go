package service

import (
	"context"
	"time"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/damon-houk/currency-quote/internal/domain/repository"
	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
)

// GetCurrencyQuoteService validates a CurrencyObject and fetches quotes for the surviving pairs
type GetCurrencyQuoteService struct {
	currency      entity.CurrencyObject
	newValidator  repository.ValidatorFactory
	newRepository repository.RepositoryFactory
	clock         func() time.Time
	logger        logger.Logger
}

// NewGetCurrencyQuoteService creates a new quote service
func NewGetCurrencyQuoteService(
	currency entity.CurrencyObject,
	newValidator repository.ValidatorFactory,
	newRepository repository.RepositoryFactory,
	log logger.Logger,
) *GetCurrencyQuoteService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &GetCurrencyQuoteService{
		currency:      currency,
		newValidator:  newValidator,
		newRepository: newRepository,
		clock:         time.Now,
		logger:        log,
	}
}

// WithClock replaces the clock used to decide what "today" is for history requests
func (s *GetCurrencyQuoteService) WithClock(clock func() time.Time) *GetCurrencyQuoteService {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Last returns the latest quote for every supported pair
func (s *GetCurrencyQuoteService) Last(ctx context.Context) ([]entity.CurrencyQuote, error) {
	validated, err := s.validate(ctx)
	if err != nil {
		return nil, err
	}

	return s.newRepository(validated).GetLastQuote(ctx)
}

// History returns the quote of every supported pair on referenceDate (YYYYMMDD).
// A malformed, current or future date returns an empty result without any upstream call.
func (s *GetCurrencyQuoteService) History(ctx context.Context, referenceDate int) ([]entity.CurrencyQuote, error) {
	now := s.clock()
	if !IsValidReferenceDate(referenceDate, now) {
		s.logger.Warn("Invalid reference date", map[string]interface{}{
			"reference_date": referenceDate,
			"today":          DateKey(now),
		})
		return []entity.CurrencyQuote{}, nil
	}

	validated, err := s.validate(ctx)
	if err != nil {
		return nil, err
	}

	return s.newRepository(validated).GetHistoryQuote(ctx, referenceDate)
}

func (s *GetCurrencyQuoteService) validate(ctx context.Context) (entity.CurrencyObject, error) {
	validator := NewCurrencyValidatorService(s.currency, s.newValidator(s.currency))
	return validator.ValidateCurrencyCode(ctx)
}
