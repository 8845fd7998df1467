package mention

import "regexp"

// tickerPattern matches cashtags like $TSLA: a dollar sign followed by one
// to five uppercase letters.
var tickerPattern = regexp.MustCompile(`\$([A-Z]{1,5})`)

// ExtractTicker returns the first cashtag in text without the dollar sign,
// or empty when none is present. Lowercase tags are not tickers.
func ExtractTicker(text string) string {
	m := tickerPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
