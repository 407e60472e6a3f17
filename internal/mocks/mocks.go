// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/damon-houk/currency-quote/internal/domain/repository"
	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockCurrencyValidator mocks the CurrencyValidator interface
type MockCurrencyValidator struct {
	mock.Mock
}

func (m *MockCurrencyValidator) ValidateCurrencyCode(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockQuoteRepository mocks the QuoteRepository interface
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) GetLastQuote(ctx context.Context) ([]entity.CurrencyQuote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CurrencyQuote), args.Error(1)
}

func (m *MockQuoteRepository) GetHistoryQuote(ctx context.Context, referenceDate int) ([]entity.CurrencyQuote, error) {
	args := m.Called(ctx, referenceDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CurrencyQuote), args.Error(1)
}

// Factories records the CurrencyObjects the collaborators were built over and hands back
// the shared mocks
type Factories struct {
	Validator  *MockCurrencyValidator
	Repository *MockQuoteRepository

	ValidatorInputs  []entity.CurrencyObject
	RepositoryInputs []entity.CurrencyObject
}

// NewFactories creates factories around fresh mocks
func NewFactories() *Factories {
	return &Factories{
		Validator:  new(MockCurrencyValidator),
		Repository: new(MockQuoteRepository),
	}
}

func (f *Factories) NewValidator(currency entity.CurrencyObject) repository.CurrencyValidator {
	f.ValidatorInputs = append(f.ValidatorInputs, currency)
	return f.Validator
}

func (f *Factories) NewRepository(currency entity.CurrencyObject) repository.QuoteRepository {
	f.RepositoryInputs = append(f.RepositoryInputs, currency)
	return f.Repository
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	m.Called(key, value)
	return m
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	m.Called(fields)
	return m
}
