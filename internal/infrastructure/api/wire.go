package api

import (
	"encoding/json"
	"fmt"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// quoteRecord is one quote as served by the last and daily endpoints
type quoteRecord struct {
	Name      string      `json:"name"`
	Code      string      `json:"code"`
	Codein    string      `json:"codein"`
	Timestamp json.Number `json:"timestamp"`
	Bid       json.Number `json:"bid"`
	Ask       json.Number `json:"ask"`
}

func (r quoteRecord) toQuote(pair string) (entity.CurrencyQuote, error) {
	timestamp, err := r.Timestamp.Int64()
	if err != nil {
		return entity.CurrencyQuote{}, fmt.Errorf("invalid timestamp %q for %s: %w", r.Timestamp, pair, err)
	}

	bid, err := decimal.NewFromString(r.Bid.String())
	if err != nil {
		return entity.CurrencyQuote{}, fmt.Errorf("invalid bid %q for %s: %w", r.Bid, pair, err)
	}

	ask, err := decimal.NewFromString(r.Ask.String())
	if err != nil {
		return entity.CurrencyQuote{}, fmt.Errorf("invalid ask %q for %s: %w", r.Ask, pair, err)
	}

	return entity.NewCurrencyQuote(pair, r.Name, r.Code, r.Codein, timestamp, bid, ask), nil
}

// availablePairs accepts either an object keyed by pair or a plain array of pairs
type availablePairs []string

func (a *availablePairs) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}

	var named map[string]string
	if err := json.Unmarshal(data, &named); err != nil {
		return fmt.Errorf("unexpected available pairs payload: %w", err)
	}

	pairs := make([]string, 0, len(named))
	for pair := range named {
		pairs = append(pairs, pair)
	}
	*a = pairs
	return nil
}
