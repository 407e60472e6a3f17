// Package repository internal/domain/repository/quote_repository.go
package repository

import (
	"context"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
)

// QuoteRepository defines the interface for quote retrieval over a fixed set of pairs
type QuoteRepository interface {
	// GetLastQuote returns one quote per pair, in pair order
	GetLastQuote(ctx context.Context) ([]entity.CurrencyQuote, error)

	// GetHistoryQuote returns one quote per pair for a YYYYMMDD reference date.
	// An invalid date yields an empty result and no error.
	GetHistoryQuote(ctx context.Context, referenceDate int) ([]entity.CurrencyQuote, error)
}

// RepositoryFactory builds a QuoteRepository over the given pairs
type RepositoryFactory func(currency entity.CurrencyObject) QuoteRepository

// CurrencyValidator defines the interface for checking pairs against the upstream allow-list
type CurrencyValidator interface {
	// ValidateCurrencyCode returns the requested pairs currently supported upstream
	ValidateCurrencyCode(ctx context.Context) ([]string, error)
}

// ValidatorFactory builds a CurrencyValidator over the given pairs
type ValidatorFactory func(currency entity.CurrencyObject) CurrencyValidator
