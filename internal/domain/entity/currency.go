package entity

import (
	"strings"
)

const (
	pairSeparator = "-"
	minCodeLength = 3
	maxCodeLength = 4
)

// CurrencyObject is a validated, ordered list of BASE-QUOTE pair identifiers.
// It is immutable once built; Pairs always returns a copy.
type CurrencyObject struct {
	pairs []string
}

// NewCurrencyObject builds a CurrencyObject from a single pair string or a list of pairs.
// Accepted inputs are string, []string and []interface{} holding only strings.
func NewCurrencyObject(input interface{}) (CurrencyObject, error) {
	var pairs []string

	switch v := input.(type) {
	case string:
		if v == "" {
			return CurrencyObject{}, ErrEmptyList
		}
		pairs = []string{v}
	case []string:
		pairs = make([]string, len(v))
		copy(pairs, v)
	case []interface{}:
		pairs = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return CurrencyObject{}, ErrInputType
			}
			pairs = append(pairs, s)
		}
	default:
		return CurrencyObject{}, ErrInputType
	}

	if len(pairs) == 0 {
		return CurrencyObject{}, ErrEmptyList
	}

	for _, pair := range pairs {
		if err := ValidatePair(pair); err != nil {
			return CurrencyObject{}, err
		}
	}

	return CurrencyObject{pairs: pairs}, nil
}

// ValidatePair checks that pair is two 3 or 4 letter codes joined by a single hyphen
func ValidatePair(pair string) error {
	codes := strings.Split(pair, pairSeparator)
	if len(codes) != 2 {
		return ErrPairFormat
	}

	for _, code := range codes {
		if len(code) < minCodeLength || len(code) > maxCodeLength || !isAlpha(code) {
			return ErrCodeLength
		}
	}

	return nil
}

// Pairs returns a copy of the pair identifiers in their original order
func (c CurrencyObject) Pairs() []string {
	out := make([]string, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Len returns the number of pair identifiers
func (c CurrencyObject) Len() int {
	return len(c.pairs)
}

// String joins the pairs with commas
func (c CurrencyObject) String() string {
	return strings.Join(c.pairs, ",")
}

// CompactPair strips the separator, matching the upstream response keys (USD-BRL -> USDBRL)
func CompactPair(pair string) string {
	return strings.ReplaceAll(pair, pairSeparator, "")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
