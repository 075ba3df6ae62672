package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ryanlewis/textbox"
)

// Disabled is the marker value that turns a marker off.
const Disabled = "none"

// ParseRune parses a marker value which can be in various formats:
// - Literal character (e.g., "◆", "|", " ")
// - Escaped Unicode: "\uXXXX", "\UXXXXXXXX"
// - Unicode notation: "U+XXXX"
// - Decimal: "124"
// - Hexadecimal: "0x7C"
// - "none", which yields textbox.NoRune
func ParseRune(s string) (rune, error) {
	if s == "" {
		return 0, fmt.Errorf("marker cannot be empty")
	}
	if s == Disabled {
		return textbox.NoRune, nil
	}

	// Try literal character first (single rune)
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}

	// Try each format parser
	if r, ok := parseEscapedUnicode(s); ok {
		return r, nil
	}
	if r, ok := parseUnicodeNotation(s); ok {
		return r, nil
	}
	if r, ok := parseHexadecimal(s); ok {
		return r, nil
	}
	if r, ok := parseDecimal(s); ok {
		return r, nil
	}

	return 0, fmt.Errorf("invalid rune format: %s", s)
}

// FormatRune is the inverse of ParseRune for display: printable runes are
// returned as themselves, a disabled marker as "none", anything else in
// U+XXXX notation.
func FormatRune(r rune) string {
	switch {
	case r == textbox.NoRune:
		return Disabled
	case r == ' ' || strconv.IsPrint(r):
		return string(r)
	default:
		return fmt.Sprintf("U+%04X", r)
	}
}

// validateRune checks if a rune is valid UTF-8 and not a surrogate or NUL
func validateRune(r rune) (rune, bool) {
	if r <= 0 || r > utf8.MaxRune {
		return 0, false
	}
	// Reject UTF-16 surrogates
	if r >= 0xD800 && r <= 0xDFFF {
		return 0, false
	}
	return r, true
}

func parseEscapedUnicode(s string) (rune, bool) {
	// \uXXXX format - must be exactly 6 characters
	if strings.HasPrefix(s, "\\u") && len(s) == 6 {
		code, err := strconv.ParseInt(s[2:], 16, 32)
		if err == nil {
			return validateRune(rune(code))
		}
	}
	// \UXXXXXXXX format - must be exactly 10 characters
	if strings.HasPrefix(s, "\\U") && len(s) == 10 {
		code, err := strconv.ParseInt(s[2:], 16, 32)
		if err == nil {
			return validateRune(rune(code))
		}
	}
	return 0, false
}

func parseUnicodeNotation(s string) (rune, bool) {
	if strings.HasPrefix(s, "U+") || strings.HasPrefix(s, "u+") {
		code, err := strconv.ParseInt(s[2:], 16, 32)
		if err == nil {
			return validateRune(rune(code))
		}
	}
	return 0, false
}

func parseHexadecimal(s string) (rune, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		code, err := strconv.ParseInt(s[2:], 16, 32)
		if err == nil {
			return validateRune(rune(code))
		}
	}
	return 0, false
}

func parseDecimal(s string) (rune, bool) {
	code, err := strconv.ParseInt(s, 10, 32)
	if err == nil {
		return validateRune(rune(code))
	}
	return 0, false
}
