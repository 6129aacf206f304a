package entity

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Money is an immutable amount in a single currency. The amount is always
// strictly positive.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney validates amount and currency.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, NewValidationError("amount must be greater than zero")
	}
	if !currencyPattern.MatchString(currency) {
		return Money{}, NewValidationError("currency must be a 3-letter uppercase ISO code")
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MoneyFromString parses a decimal string amount, e.g. "99.99".
func MoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, NewValidationError("amount %q is not a valid decimal", amount)
	}
	return NewMoney(d, currency)
}

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, NewBusinessRuleViolation(
			"currency_mismatch",
			"cannot add "+other.Currency+" to "+m.Currency,
		)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}
