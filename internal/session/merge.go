package session

import (
	"yousearch/internal/bang"
	"yousearch/internal/domain"
)

// MergeFilters computes the effective filters of one search. Per field a
// bang value wins over the sticky UI value, which wins over the default.
// Count is not a filter and is never merged.
func MergeFilters(ui domain.Filters, o bang.Overrides) domain.Filters {
	def := domain.DefaultFilters()
	return domain.Filters{
		Freshness:  pick(o.Freshness, ui.Freshness, def.Freshness),
		Country:    pick(o.Country, ui.Country, def.Country),
		SafeSearch: pick(o.SafeSearch, ui.SafeSearch, def.SafeSearch),
	}
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// mergeNews moves every web result into the news bucket after the existing
// news results
func mergeNews(resp *domain.SearchResponse) {
	news := make([]domain.SearchResult, 0, len(resp.Results.News)+len(resp.Results.Web))
	news = append(news, resp.Results.News...)
	news = append(news, resp.Results.Web...)
	resp.Results.News = news
	resp.Results.Web = []domain.SearchResult{}
}

func searchOptions(f domain.Filters, count int) domain.SearchOptions {
	return domain.SearchOptions{
		Freshness:  f.Freshness,
		Country:    f.Country,
		SafeSearch: f.SafeSearch,
		Count:      count,
	}
}
