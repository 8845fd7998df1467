package mention

import "testing"

func TestExtractTicker(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"@bot what about $TSLA today?", "TSLA"},
		{"$AAPL", "AAPL"},
		{"thoughts on $GOOGL and $MSFT?", "GOOGL"},
		{"no cashtag here", ""},
		{"lowercase $tsla is not a ticker", ""},
		{"$TOOLONG picks first five", "TOOLO"},
		{"price is $5 today", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractTicker(c.text); got != c.want {
			t.Errorf("ExtractTicker(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}
