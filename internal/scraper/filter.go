package scraper

import (
	"strings"

	"rentscout/config"
	"rentscout/services/history"
)

// Filter decides whether a candidate becomes a final listing. All checks are
// pure except the dedup membership lookup against the visited set.
type Filter struct {
	excludeWords []string
	maxPrice     int
	bedrooms     int
	history      *history.Store
	dedupe       bool
}

// NewFilter builds the filter from the search configuration. dedupe false
// disables the visited-set check for the run.
func NewFilter(cfg *config.Config, hist *history.Store, dedupe bool) *Filter {
	words := make([]string, 0, len(cfg.ExcludeWords))
	for _, w := range cfg.ExcludeWords {
		words = append(words, strings.ToLower(w))
	}

	return &Filter{
		excludeWords: words,
		maxPrice:     cfg.URL.MaxPrice,
		bedrooms:     cfg.URL.Bedrooms,
		history:      hist,
		dedupe:       dedupe,
	}
}

// Accepts reports whether the candidate passes every criterion. Rejected
// candidates are discarded, not retried.
func (f *Filter) Accepts(l *Listing) bool {
	if f.hasExcludedWord(l.Title) {
		return false
	}

	// TotalPrice is never populated by the parser (it fills
	// TotalPriceFormatted instead), so this check is currently inert. See
	// the Listing.TotalPrice comment.
	if l.TotalPrice != nil && *l.TotalPrice > f.maxPrice {
		return false
	}

	// An unknown room count is not grounds for rejection.
	if f.bedrooms != 0 && l.Bedrooms != nil && *l.Bedrooms != f.bedrooms {
		return false
	}

	if f.dedupe && f.history != nil && f.history.Contains(l.URL) {
		return false
	}

	return true
}

// DedupeEnabled reports whether the visited-set check is active this run.
func (f *Filter) DedupeEnabled() bool {
	return f.dedupe
}

func (f *Filter) hasExcludedWord(title string) bool {
	title = strings.ToLower(title)
	for _, w := range f.excludeWords {
		if strings.Contains(title, w) {
			return true
		}
	}
	return false
}
