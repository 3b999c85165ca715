package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule extracts a monetary amount from text. Rules are tried in order and
// the first one yielding a parsable value wins.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Extract returns the first parsable amount matched by the rule.
func (r Rule) Extract(text string) (float64, bool) {
	for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
		if len(m) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// DefaultRules is the ordered amount extraction rule set. A label and its
// value must share a line; header values are joined with newlines and a
// subject ending in "invoice" must not pick up the next field.
var DefaultRules = []Rule{
	{Name: "currency-prefixed", Pattern: regexp.MustCompile(`\$([\d,]+(?:\.\d{2})?)`)},
	{Name: "currency-suffixed", Pattern: regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)[\t ]*(?:USD|dollars?)`)},
	{Name: "amount-label", Pattern: regexp.MustCompile(`(?i)amount[:\t ]+\$?([\d,]+(?:\.\d{2})?)`)},
	{Name: "payment-label", Pattern: regexp.MustCompile(`(?i)payment[:\t ]+\$?([\d,]+(?:\.\d{2})?)`)},
	{Name: "invoice-label", Pattern: regexp.MustCompile(`(?i)invoice[:\t ]+\$?([\d,]+(?:\.\d{2})?)`)},
}

// ExtractAmount applies rules in order and returns the first amount found
// along with the name of the rule that produced it.
func ExtractAmount(rules []Rule, text string) (float64, string, bool) {
	for _, r := range rules {
		if v, ok := r.Extract(text); ok {
			return v, r.Name, true
		}
	}
	return 0, "", false
}
