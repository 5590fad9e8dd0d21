package scraper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentscout/config"
	"rentscout/services/history"
)

func filterConfig() *config.Config {
	return &config.Config{
		ExcludeWords: []string{"Monoambiente", "oficina"},
		URL: config.URLConfig{
			Bedrooms: 2,
			MaxPrice: 35000,
		},
	}
}

func emptyHistory(t *testing.T) *history.Store {
	t.Helper()
	hist, err := history.Load(filepath.Join(t.TempDir(), "visited.txt"))
	require.NoError(t, err)
	return hist
}

func candidate() *Listing {
	rent := 30000
	bedrooms := 2
	return &Listing{
		Title:     "Apto 2 dormitorios en Pocitos",
		RentPrice: &rent,
		Bedrooms:  &bedrooms,
		URL:       "https://apartamento.example.uy/apto-pocitos_JM",
	}
}

func TestAcceptsPassingCandidate(t *testing.T) {
	f := NewFilter(filterConfig(), emptyHistory(t), true)
	assert.True(t, f.Accepts(candidate()))
}

func TestRejectsExcludedWordCaseInsensitive(t *testing.T) {
	f := NewFilter(filterConfig(), emptyHistory(t), true)

	l := candidate()
	l.Title = "MONOAMBIENTE a estrenar"
	assert.False(t, f.Accepts(l))

	l.Title = "Apto tipo Oficina"
	assert.False(t, f.Accepts(l))
}

func TestRejectsBedroomMismatch(t *testing.T) {
	f := NewFilter(filterConfig(), emptyHistory(t), true)

	l := candidate()
	three := 3
	l.Bedrooms = &three
	assert.False(t, f.Accepts(l))
}

func TestAcceptsUnknownBedroomCount(t *testing.T) {
	f := NewFilter(filterConfig(), emptyHistory(t), true)

	l := candidate()
	l.Bedrooms = nil
	assert.True(t, f.Accepts(l))
}

func TestAcceptsAnyBedroomsWhenUnconfigured(t *testing.T) {
	cfg := filterConfig()
	cfg.URL.Bedrooms = 0
	f := NewFilter(cfg, emptyHistory(t), true)

	l := candidate()
	five := 5
	l.Bedrooms = &five
	assert.True(t, f.Accepts(l))
}

func TestPriceCeilingUsesTotalPrice(t *testing.T) {
	f := NewFilter(filterConfig(), emptyHistory(t), true)

	l := candidate()
	over := 40000
	l.TotalPrice = &over
	assert.False(t, f.Accepts(l))

	// With TotalPrice unset, the rent alone is never compared against the
	// ceiling, even when it exceeds it.
	l = candidate()
	rent := 90000
	l.RentPrice = &rent
	assert.True(t, f.Accepts(l))
}

func TestRejectsVisitedListing(t *testing.T) {
	hist := emptyHistory(t)
	require.NoError(t, hist.Add("https://apartamento.example.uy/apto-pocitos_JM"))

	f := NewFilter(filterConfig(), hist, true)
	assert.False(t, f.Accepts(candidate()))
}

func TestVisitedCheckSkippedWhenDedupeDisabled(t *testing.T) {
	hist := emptyHistory(t)
	require.NoError(t, hist.Add("https://apartamento.example.uy/apto-pocitos_JM"))

	f := NewFilter(filterConfig(), hist, false)
	assert.True(t, f.Accepts(candidate()))
	assert.False(t, f.DedupeEnabled())
}
