package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// applyFormatSpec renders value according to spec. Every branch is
// fail-open: a value that doesn't parse as the spec's expected shape (or an
// unrecognized spec) passes through unchanged.
func applyFormatSpec(value, spec, locale string) string {
	if spec == "" {
		return value
	}

	switch spec {
	case "C", "c":
		return formatCurrency(value)
	case "X", "x":
		return formatHex(value, spec == "X")
	case "E", "e":
		return formatScientific(value, spec == "E")
	case "P", "p":
		return formatPercent(value)
	case "n", "N":
		return formatLocaleNumber(value, locale)
	case "d", "D", "t", "T", "f", "F":
		return formatDateTimeSpec(value, spec, locale)
	}

	if n, ok := parseFixedSpec(spec); ok {
		return formatFixed(value, n)
	}
	if n, ok := parseZeroPadSpec(spec); ok {
		return formatZeroPad(value, n)
	}

	return value
}

// parseFixedSpec matches ".Nf" or "Nf" (N decimal digits, clamped to 50).
func parseFixedSpec(spec string) (int, bool) {
	s := strings.TrimPrefix(spec, ".")
	if len(s) < 2 {
		return 0, false
	}
	last := s[len(s)-1]
	if last != 'f' && last != 'F' {
		return 0, false
	}
	digits := s[:len(s)-1]
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	if n > 50 {
		n = 50
	}
	return n, true
}

func formatFixed(value string, n int) string {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return strconv.FormatFloat(f, 'f', n, 64)
}

// parseZeroPadSpec matches "0N" (width N, clamped to 50).
func parseZeroPadSpec(spec string) (int, bool) {
	if len(spec) < 2 || spec[0] != '0' {
		return 0, false
	}
	n, err := strconv.Atoi(spec[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	if n > 50 {
		n = 50
	}
	return n, true
}

func formatZeroPad(value string, width int) string {
	neg := strings.HasPrefix(value, "-")
	digits := value
	if neg {
		digits = value[1:]
	}
	i, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return value
	}
	s := strconv.FormatInt(i, 10)
	for len(s) < width {
		s = "0" + s
	}
	if neg {
		s = "-" + s
	}
	return s
}

func formatCurrency(value string) string {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	neg := f < 0
	s := fmt.Sprintf("$%.2f", abs(f))
	if neg {
		return "-" + s
	}
	return s
}

func formatHex(value string, upper bool) string {
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return value
	}
	s := strconv.FormatInt(i, 16)
	if upper {
		s = strings.ToUpper(s)
	}
	return s
}

func formatScientific(value string, upper bool) string {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if upper {
		s = strings.ToUpper(s)
	}
	return s
}

func formatPercent(value string) string {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%.2f%%", f*100)
}

// formatLocaleNumber groups the integer part with the locale's thousands
// separator. Only a small built-in locale table is supported: "de"/"de-DE"
// and "fr"/"fr-FR" use "." and ","; every other locale uses "," and ".".
func formatLocaleNumber(value, locale string) string {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	thousands, decimal := localeSeparators(locale)
	s := strconv.FormatFloat(f, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}
	grouped := groupDigits(intPart, thousands)
	out := grouped
	if fracPart != "" {
		out += decimal + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return strings.Join(parts, sep)
}

func localeSeparators(locale string) (thousands, decimal string) {
	switch strings.ToLower(locale) {
	case "de-de", "de", "fr-fr", "fr":
		return ".", ","
	default:
		return ",", "."
	}
}

// formatDateTimeSpec interprets value as seconds since the Unix epoch and
// formats it as short/long date, short/long time, or full date+time.
func formatDateTimeSpec(value, spec, locale string) string {
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	t := time.Unix(int64(secs), 0).UTC()
	switch spec {
	case "d":
		return t.Format("01/02/2006")
	case "D":
		return t.Format("Monday, January 2, 2006")
	case "t":
		return t.Format("3:04 PM")
	case "T":
		return t.Format("3:04:05 PM")
	case "f":
		return t.Format("Monday, January 2, 2006 3:04 PM")
	case "F":
		return t.Format("Monday, January 2, 2006 3:04:05 PM")
	}
	return value
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
