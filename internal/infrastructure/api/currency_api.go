package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/damon-houk/currency-quote/internal/domain/repository"
	"github.com/damon-houk/currency-quote/internal/domain/service"
)

// CurrencyAPI implements repository.QuoteRepository over the last and daily endpoints
type CurrencyAPI struct {
	client   *Client
	policy   RetryPolicy
	clock    func() time.Time
	currency entity.CurrencyObject
}

// NewCurrencyAPI creates a quote repository for the given pairs
func NewCurrencyAPI(client *Client, policy RetryPolicy, clock func() time.Time, currency entity.CurrencyObject) *CurrencyAPI {
	if clock == nil {
		clock = time.Now
	}
	return &CurrencyAPI{
		client:   client,
		policy:   policy,
		clock:    clock,
		currency: currency,
	}
}

// RepositoryFactory returns a factory building CurrencyAPI repositories on this client
func (c *Client) RepositoryFactory(policy RetryPolicy, clock func() time.Time) repository.RepositoryFactory {
	return func(currency entity.CurrencyObject) repository.QuoteRepository {
		return NewCurrencyAPI(c, policy, clock, currency)
	}
}

// GetLastQuote fetches all pairs in one request and returns them in pair order
func (a *CurrencyAPI) GetLastQuote(ctx context.Context) (quotes []entity.CurrencyQuote, err error) {
	ctx, span := a.client.tracer.Start(ctx, "currency_api.get_last_quote")
	defer func() { span.End(err) }()

	pairs := a.currency.Pairs()
	span.SetAttribute("pairs", strings.Join(pairs, ","))

	var response map[string]quoteRecord
	if err := a.client.getJSON(ctx, lastQuotePath+strings.Join(pairs, ","), nil, a.policy, &response); err != nil {
		return nil, entity.TransportError("fetching last quotes", err)
	}

	quotes = make([]entity.CurrencyQuote, 0, len(pairs))
	for _, pair := range pairs {
		record, ok := response[entity.CompactPair(pair)]
		if !ok {
			return nil, entity.TransportError("fetching last quotes", fmt.Errorf("no quote returned for %s", pair))
		}

		quote, err := record.toQuote(pair)
		if err != nil {
			return nil, entity.TransportError("parsing last quotes", err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, nil
}

// GetHistoryQuote fetches each pair's quote on referenceDate, one request per pair in order.
// The first failing pair aborts the batch.
func (a *CurrencyAPI) GetHistoryQuote(ctx context.Context, referenceDate int) (quotes []entity.CurrencyQuote, err error) {
	now := a.clock()
	if !service.IsValidReferenceDate(referenceDate, now) {
		a.client.logger.Warn("Invalid reference date", map[string]interface{}{
			"reference_date": referenceDate,
			"today":          service.DateKey(now),
		})
		return []entity.CurrencyQuote{}, nil
	}

	ctx, span := a.client.tracer.Start(ctx, "currency_api.get_history_quote")
	defer func() { span.End(err) }()
	span.SetAttribute("reference_date", referenceDate)

	date := strconv.Itoa(referenceDate)
	query := url.Values{}
	query.Set("start_date", date)
	query.Set("end_date", date)

	pairs := a.currency.Pairs()
	quotes = make([]entity.CurrencyQuote, 0, len(pairs))

	for _, pair := range pairs {
		var response []quoteRecord
		if err := a.client.getJSON(ctx, historyQuotePath+url.PathEscape(pair), query, a.policy, &response); err != nil {
			return nil, entity.TransportError("fetching history quote for "+pair, err)
		}

		if len(response) == 0 {
			return nil, entity.TransportError("fetching history quote for "+pair,
				fmt.Errorf("no quote available on %d", referenceDate))
		}

		quote, err := response[0].toQuote(pair)
		if err != nil {
			return nil, entity.TransportError("parsing history quote for "+pair, err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, nil
}
