// Package service internal/domain/service/validate_currency.go
package service

import (
	"context"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/damon-houk/currency-quote/internal/domain/repository"
)

// CurrencyValidatorService narrows a CurrencyObject to the pairs the upstream source supports
type CurrencyValidatorService struct {
	currency  entity.CurrencyObject
	validator repository.CurrencyValidator
}

// NewCurrencyValidatorService creates a new validator service
func NewCurrencyValidatorService(currency entity.CurrencyObject, validator repository.CurrencyValidator) *CurrencyValidatorService {
	return &CurrencyValidatorService{
		currency:  currency,
		validator: validator,
	}
}

// ValidateCurrencyCode returns a new CurrencyObject holding only the supported pairs, in
// their original order. Validator errors are returned as is.
func (s *CurrencyValidatorService) ValidateCurrencyCode(ctx context.Context) (entity.CurrencyObject, error) {
	supported, err := s.validator.ValidateCurrencyCode(ctx)
	if err != nil {
		return entity.CurrencyObject{}, err
	}

	supportedSet := make(map[string]struct{}, len(supported))
	for _, pair := range supported {
		supportedSet[pair] = struct{}{}
	}

	var valid []string
	for _, pair := range s.currency.Pairs() {
		if _, ok := supportedSet[pair]; ok {
			valid = append(valid, pair)
		}
	}

	if len(valid) == 0 {
		return entity.CurrencyObject{}, entity.ErrAllInvalid
	}

	return entity.NewCurrencyObject(valid)
}
