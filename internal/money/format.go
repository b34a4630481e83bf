package money

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts for a locale and currency, e.g. "R$ 1.234,50"
// for pt-BR/BRL.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a Formatter from a BCP 47 locale and an ISO 4217 code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return &Formatter{
		tag:     tag,
		unit:    unit,
		printer: message.NewPrinter(tag),
	}, nil
}

// Format renders a with the currency symbol and locale separators.
func (f *Formatter) Format(a Amount) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(a.Float64())))
}

// Currency returns the ISO code, e.g. "BRL".
func (f *Formatter) Currency() string { return f.unit.String() }

// Locale returns the BCP 47 tag the formatter was built with.
func (f *Formatter) Locale() string { return f.tag.String() }
