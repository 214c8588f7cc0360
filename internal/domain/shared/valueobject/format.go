package valueobject

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DisplayLanguage is the locale used for human-readable amounts
var DisplayLanguage = language.MustParse("es-AR")

// Format renders the amount for people, e.g. "$ 1.100,50"
func Format(m Money) string {
	return FormatIn(DisplayLanguage, m)
}

// FormatIn renders the amount using the given locale's separators
func FormatIn(tag language.Tag, m Money) string {
	p := message.NewPrinter(tag)
	return "$ " + p.Sprint(number.Decimal(m.Float64(), number.Scale(2)))
}
