package helpers

import (
	"regexp"
	"strconv"
	"strings"
)

// usdToUYU converts USD listing prices to pesos. Frozen approximation, not a
// live rate.
const usdToUYU = 40

var (
	rePricePesos     = regexp.MustCompile(`\$\s*([\d.]+)`)
	rePriceUSD       = regexp.MustCompile(`US\$\s*(\d+)`)
	rePriceBare      = regexp.MustCompile(`^[\d.]+$`)
	reBedrooms       = regexp.MustCompile(`(?i)(\d+)\s*dorm`)
	reArea           = regexp.MustCompile(`(?i)(\d+)\s*m[²2]`)
	reMaintenanceFee = regexp.MustCompile(`(?i)gastos comunes.*?\$\s*([\d.]+)`)
)

// ExtractPrice parses a price amount from raw text. Peso amounts use dot
// thousands separators ("$ 45.000"); USD amounts ("US$ 1000") are converted
// with the fixed multiplier. The USD pattern is checked first because the
// peso pattern also matches the "$ 1000" inside "US$ 1000". Text that is a
// bare amount with no currency symbol (older markup puts the symbol in a
// sibling element) is read as pesos. Returns nil when nothing matches.
func ExtractPrice(text string) *int {
	if text == "" {
		return nil
	}
	if m := rePriceUSD.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			v := n * usdToUYU
			return &v
		}
	}
	if m := rePricePesos.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ".", "")); err == nil {
			return &n
		}
	}
	if rePriceBare.MatchString(strings.TrimSpace(text)) {
		if n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(text), ".", "")); err == nil {
			return &n
		}
	}
	return nil
}

// ExtractBedrooms finds a "<digits> dorm..." room count in text, or nil.
func ExtractBedrooms(text string) *int {
	if m := reBedrooms.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}
	return nil
}

// ExtractArea finds a "<digits> m²|m2" surface in text and normalizes it to
// "<digits> m2". Returns "" when absent.
func ExtractArea(text string) string {
	if m := reArea.FindStringSubmatch(text); m != nil {
		return m[1] + " m2"
	}
	return ""
}

// ExtractMaintenanceFee finds a "gastos comunes ... $<amount>" fee in text,
// or nil.
func ExtractMaintenanceFee(text string) *int {
	if m := reMaintenanceFee.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ".", "")); err == nil {
			return &n
		}
	}
	return nil
}

// FormatThousands renders n with dot thousands separators for display.
func FormatThousands(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.Itoa(n)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// SlugFromURL derives a human-readable title from the listing URL's last
// path segment: trailing metadata after the first underscore is stripped and
// hyphens become spaces.
func SlugFromURL(url string) string {
	if url == "" {
		return ""
	}
	segment := url[strings.LastIndex(url, "/")+1:]
	segment, _, _ = strings.Cut(segment, "_")
	return strings.ReplaceAll(segment, "-", " ")
}
