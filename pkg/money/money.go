// Package money renders predicted fares as localised currency strings.
package money

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrUnknownCurrency is returned for codes that are not ISO 4217 currencies.
var ErrUnknownCurrency = errors.New("unknown currency")

// Formatter prints amounts in one currency for one locale.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	scale   int
}

// Option configures a Formatter.
type Option func(*formatterConfig)

type formatterConfig struct {
	lang language.Tag
}

// WithLanguage sets the locale used for digit grouping and the symbol.
func WithLanguage(tag language.Tag) Option {
	return func(c *formatterConfig) { c.lang = tag }
}

// NewFormatter creates a formatter for the ISO 4217 code.
func NewFormatter(code string, opts ...Option) (*Formatter, error) {
	cfg := formatterConfig{lang: language.English}
	for _, opt := range opts {
		opt(&cfg)
	}

	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		unit:    unit,
		printer: message.NewPrinter(cfg.lang),
		scale:   scale,
	}, nil
}

// Code returns the ISO code, e.g. "INR".
func (f *Formatter) Code() string { return f.unit.String() }

// Symbol returns the locale's symbol for the currency, e.g. "₹".
func (f *Formatter) Symbol() string {
	return f.printer.Sprint(currency.Symbol(f.unit))
}

// Format renders amount as "<symbol> <grouped amount>", e.g. "₹ 1,234.56".
func (f *Formatter) Format(amount float64) string {
	digits := number.Decimal(amount,
		number.MinFractionDigits(f.scale),
		number.MaxFractionDigits(f.scale),
	)
	return f.Symbol() + " " + f.printer.Sprint(digits)
}

// Format is a one-shot helper over NewFormatter.
func Format(amount float64, code string) (string, error) {
	f, err := NewFormatter(code)
	if err != nil {
		return "", err
	}
	return f.Format(amount), nil
}
