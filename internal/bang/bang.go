// Package bang parses the "!token" query language. A bang is a reserved
// whitespace-delimited token that sets a search option instead of being
// searched for, e.g. "rust async !week !de".
package bang

import (
	"strconv"
	"strings"
)

// Category identifies which option a bang sets
type Category string

const (
	CategoryFreshness  Category = "freshness"
	CategoryCountry    Category = "country"
	CategorySafeSearch Category = "safesearch"
	CategoryCount      Category = "count"
	CategoryNews       Category = "news"
)

// Overrides is the result of parsing one raw query string
type Overrides struct {
	CleanQuery  string
	Freshness   string // "" when not set
	Country     string
	SafeSearch  string
	Count       int // 0 when not set
	IsNews      bool
	ActiveBangs []string
}

// Bang describes one recognized token
type Bang struct {
	Token    string
	Category Category
	Value    string
}

// The tables are disjoint so a token belongs to at most one category.
var freshnessBangs = map[string]string{
	"!day":   "day",
	"!week":  "week",
	"!month": "month",
	"!year":  "year",
}

var countryBangs = map[string]string{
	"!us": "US",
	"!gb": "GB",
	"!de": "DE",
	"!fr": "FR",
	"!jp": "JP",
	"!ca": "CA",
}

var safesearchBangs = map[string]string{
	"!strict": "strict",
	"!safe":   "strict",
}

var countBangs = map[string]int{
	"!10": 10,
	"!20": 20,
	"!50": 50,
}

const newsBang = "!news"

// Parse splits query on whitespace and absorbs every recognized bang.
// Unrecognized tokens are kept verbatim, in order, in CleanQuery. When the
// same category appears more than once the last token wins, but every
// occurrence is recorded in ActiveBangs.
func Parse(query string) Overrides {
	var (
		out   Overrides
		clean []string
	)

	for _, token := range strings.Fields(query) {
		lower := strings.ToLower(token)

		if v, ok := freshnessBangs[lower]; ok {
			out.Freshness = v
		} else if v, ok := countryBangs[lower]; ok {
			out.Country = v
		} else if v, ok := safesearchBangs[lower]; ok {
			out.SafeSearch = v
		} else if v, ok := countBangs[lower]; ok {
			out.Count = v
		} else if lower == newsBang {
			out.IsNews = true
		} else {
			clean = append(clean, token)
			continue
		}
		out.ActiveBangs = append(out.ActiveBangs, lower)
	}

	out.CleanQuery = strings.Join(clean, " ")
	return out
}

// HasQuery reports whether anything searchable is left after stripping bangs
func (o Overrides) HasQuery() bool {
	return strings.TrimSpace(o.CleanQuery) != ""
}

// Lookup returns the bang a token maps to, if any
func Lookup(token string) (Bang, bool) {
	lower := strings.ToLower(token)
	if v, ok := freshnessBangs[lower]; ok {
		return Bang{Token: lower, Category: CategoryFreshness, Value: v}, true
	}
	if v, ok := countryBangs[lower]; ok {
		return Bang{Token: lower, Category: CategoryCountry, Value: v}, true
	}
	if v, ok := safesearchBangs[lower]; ok {
		return Bang{Token: lower, Category: CategorySafeSearch, Value: v}, true
	}
	if v, ok := countBangs[lower]; ok {
		return Bang{Token: lower, Category: CategoryCount, Value: strconv.Itoa(v)}, true
	}
	if lower == newsBang {
		return Bang{Token: lower, Category: CategoryNews, Value: "true"}, true
	}
	return Bang{}, false
}

// Table lists every bang grouped by category in a stable order
func Table() []Bang {
	var out []Bang
	for _, tok := range []string{"!day", "!week", "!month", "!year"} {
		out = append(out, Bang{Token: tok, Category: CategoryFreshness, Value: freshnessBangs[tok]})
	}
	for _, tok := range []string{"!us", "!gb", "!de", "!fr", "!jp", "!ca"} {
		out = append(out, Bang{Token: tok, Category: CategoryCountry, Value: countryBangs[tok]})
	}
	for _, tok := range []string{"!strict", "!safe"} {
		out = append(out, Bang{Token: tok, Category: CategorySafeSearch, Value: safesearchBangs[tok]})
	}
	for _, tok := range []string{"!10", "!20", "!50"} {
		out = append(out, Bang{Token: tok, Category: CategoryCount, Value: strconv.Itoa(countBangs[tok])})
	}
	return append(out, Bang{Token: newsBang, Category: CategoryNews, Value: "true"})
}
