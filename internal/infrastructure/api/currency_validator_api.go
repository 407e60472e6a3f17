package api

import (
	"context"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/damon-houk/currency-quote/internal/domain/repository"
)

// CurrencyValidatorAPI implements repository.CurrencyValidator over the available pairs endpoint
type CurrencyValidatorAPI struct {
	client   *Client
	policy   RetryPolicy
	currency entity.CurrencyObject
}

// NewCurrencyValidatorAPI creates a validator for the given pairs
func NewCurrencyValidatorAPI(client *Client, policy RetryPolicy, currency entity.CurrencyObject) *CurrencyValidatorAPI {
	return &CurrencyValidatorAPI{
		client:   client,
		policy:   policy,
		currency: currency,
	}
}

// ValidatorFactory returns a factory building CurrencyValidatorAPI validators on this client
func (c *Client) ValidatorFactory(policy RetryPolicy) repository.ValidatorFactory {
	return func(currency entity.CurrencyObject) repository.CurrencyValidator {
		return NewCurrencyValidatorAPI(c, policy, currency)
	}
}

// ValidateCurrencyCode returns the requested pairs listed by the API, in requested order
func (v *CurrencyValidatorAPI) ValidateCurrencyCode(ctx context.Context) (validated []string, err error) {
	ctx, span := v.client.tracer.Start(ctx, "currency_validator_api.validate_currency_code")
	defer func() { span.End(err) }()

	var available availablePairs
	if err := v.client.getJSON(ctx, availablePairsPath, nil, v.policy, &available); err != nil {
		return nil, entity.TransportError("fetching available pairs", err)
	}

	known := make(map[string]struct{}, len(available))
	for _, pair := range available {
		known[pair] = struct{}{}
	}

	validated = []string{}
	for _, pair := range v.currency.Pairs() {
		if _, ok := known[pair]; ok {
			validated = append(validated, pair)
		}
	}

	span.SetAttribute("validated", len(validated))
	return validated, nil
}
