// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "fmt"

// FormatDecade returns the two-digit decade tag for year, e.g. "90"
// for 1994 or "00" for 2007 (never the bare "0" the modular-arithmetic
// shortcut would produce for the 2000s).
func FormatDecade(year int) string {
	return fmt.Sprintf("%02d", year%100/10*10)
}
