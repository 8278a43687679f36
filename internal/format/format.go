// Package format renders amounts and dates for user-facing messages in
// Indonesian conventions.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats a whole-rupiah amount with the Rp prefix and Indonesian
// digit grouping. Example: Rupiah(1500000) => "Rp1.500.000".
func Rupiah(amount int64) string {
	if amount < 0 {
		return idPrinter.Sprintf("-Rp%d", -amount)
	}
	return idPrinter.Sprintf("Rp%d", amount)
}
