// Package sanitizer cleans user-supplied text before it reaches storage or
// comparison.
//
// String helpers trim, collapse whitespace, drop control characters and cap
// length. Fold produces the comparison key used by product search: lowercase,
// diacritics removed, dotless ı mapped to i, so "İĞNE", "iğne" and "igne" all fold
// to the same value. Clamp and SaturatingAdd bound numeric input. Apply and Compose
// chain any of these into reusable pipelines:
//
//	clean := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.SingleLine)
//	name := clean("  Çay \n bardağı ") // "Çay bardağı"
package sanitizer
