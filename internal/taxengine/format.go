package taxengine

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// naira renders a whole-naira amount with thousands separators, e.g. 1,250,000.
func naira(v float64) string {
	return amountPrinter.Sprintf("%d", int64(math.Round(v)))
}
