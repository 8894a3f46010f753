package extract

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"tabwatch/lib/htmlutil"
)

// Cleaner normalizes one extracted value.
type Cleaner func(string) string

var cleaners = map[string]Cleaner{
	"text":                htmlutil.CleanText,
	"price":               CleanPrice,
	"stock":               CleanStock,
	"percent":             CleanPercent,
	"installment_monthly": cleanInstallmentMonthly,
	"installment_term":    cleanInstallmentTerm,
	"term":                cleanTerm,
	"negate":              cleanNegate,
	"list":                cleanList,
}

var nonPriceChars = regexp.MustCompile(`[^\d,.]`)

// CleanPrice normalizes a locale-formatted price string to a plain
// decimal: "1.899,99 ₼" → "1899.99", "959.00" → "959.00". Whichever of
// '.' and ',' appears last in the string is the decimal separator; the
// other is a thousands separator.
func CleanPrice(text string) string {
	text = nonPriceChars.ReplaceAllString(text, "")
	if text == "" {
		return ""
	}

	lastDot := strings.LastIndexByte(text, '.')
	lastComma := strings.LastIndexByte(text, ',')
	if lastComma > lastDot {
		text = strings.ReplaceAll(text, ".", "")
		text = strings.Replace(text, ",", ".", 1)
		text = strings.ReplaceAll(text, ",", "")
	} else {
		text = strings.ReplaceAll(text, ",", "")
	}

	// collapse any leftover repeated separators: "1.299.99" → "1299.99"
	if parts := strings.Split(text, "."); len(parts) > 2 {
		text = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}
	return text
}

// stock tokens as they appear on the az-language storefronts.
var inStockTokens = []string{"var", "stokda", "mövcuddur", "movcuddur", "true", "1"}
var outOfStockTokens = []string{"yoxdur", "bitib", "stokda yoxdur", "false", "0"}

// CleanStock maps native stock text onto the tri-state: "true", "false"
// or "" for unknown.
func CleanStock(text string) string {
	token := strings.ToLower(strings.TrimSpace(text))
	if token == "" {
		return ""
	}
	for _, t := range outOfStockTokens {
		if token == t {
			return "false"
		}
	}
	for _, t := range inStockTokens {
		if token == t {
			return "true"
		}
	}
	return ""
}

var percentPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)?\s*%`)

// CleanPercent pulls a percentage out of a discount badge ("-15%" → "15").
func CleanPercent(text string) string {
	m := percentPattern.FindString(text)
	if m == "" {
		return ""
	}
	m = strings.TrimSuffix(strings.TrimSpace(m), "%")
	m = strings.TrimSpace(strings.TrimPrefix(m, "-"))
	return CleanPrice(m)
}

// installmentPattern matches financing labels like "7.05 ₼ x 24 ay" or
// "14,58 ₼ × 12 ay".
var installmentPattern = regexp.MustCompile(`([\d.,]+)\s*[₼₽$]?\s*[xX×]\s*(\d+)\s*ay`)

func cleanInstallmentMonthly(text string) string {
	m := installmentPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return CleanPrice(m[1])
}

func cleanInstallmentTerm(text string) string {
	m := installmentPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[2] + " ay"
}

var monthsPattern = regexp.MustCompile(`\d+`)

// cleanTerm normalizes a bare financing term ("12", "12 ay" or an
// active option's label) to "N ay".
func cleanTerm(text string) string {
	m := monthsPattern.FindString(text)
	if m == "" {
		return ""
	}
	return m + " ay"
}

// cleanNegate flips a boolean-ish value, for attributes phrased as
// out-of-stock rather than in-stock.
func cleanNegate(text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "1", "yes":
		return "false"
	case "false", "0", "no":
		return "true"
	}
	return ""
}

// cleanList joins a JSON string array ("["a","b"]", as produced by a
// gjson #-path) with "; ". Non-array input passes through cleaned.
func cleanList(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return htmlutil.CleanText(text)
	}
	var parts []string
	gjson.Parse(trimmed).ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			parts = append(parts, s)
		}
		return true
	})
	return strings.Join(parts, "; ")
}

func cleanValue(name, value string) string {
	if name == "" {
		return htmlutil.CleanText(value)
	}
	c, ok := cleaners[name]
	if !ok {
		return htmlutil.CleanText(value)
	}
	return c(value)
}
