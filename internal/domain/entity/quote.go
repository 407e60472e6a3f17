package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyQuote represents one resolved quote for a currency pair, current or historical
type CurrencyQuote struct {
	CurrencyPair      string          `json:"currency_pair"`
	CurrencyPairName  string          `json:"currency_pair_name"`
	BaseCurrencyCode  string          `json:"base_currency_code"`
	QuoteCurrencyCode string          `json:"quote_currency_code"`
	QuoteTimestamp    int64           `json:"quote_timestamp"`
	BidPrice          decimal.Decimal `json:"bid_price"`
	AskPrice          decimal.Decimal `json:"ask_price"`
	QuoteExtractedAt  int64           `json:"quote_extracted_at"`
}

// NewCurrencyQuote creates a quote stamped with the current time as its extraction time.
// QuoteTimestamp comes from upstream and may be older than the extraction time.
func NewCurrencyQuote(pair, pairName, baseCode, quoteCode string, timestamp int64, bid, ask decimal.Decimal) CurrencyQuote {
	return CurrencyQuote{
		CurrencyPair:      pair,
		CurrencyPairName:  pairName,
		BaseCurrencyCode:  baseCode,
		QuoteCurrencyCode: quoteCode,
		QuoteTimestamp:    timestamp,
		BidPrice:          bid,
		AskPrice:          ask,
		QuoteExtractedAt:  time.Now().Unix(),
	}
}
