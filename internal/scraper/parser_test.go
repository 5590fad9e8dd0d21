package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(enricher *Enricher) *Parser {
	p := NewParser(enricher)
	p.detailDelay = func() {}
	return p
}

func searchPage(items ...string) []byte {
	return []byte("<html><body><ul>" + strings.Join(items, "") + "</ul></body></html>")
}

func listingItem(title, href, symbol, fraction string) string {
	return fmt.Sprintf(`<li class="ui-search-layout__item">
  <h2 class="ui-search-item__title">%s</h2>
  <a class="ui-search-link" href="%s"></a>
  <div class="ui-search-price">
    <span class="andes-money-amount__currency-symbol">%s</span>
    <span class="andes-money-amount__fraction">%s</span>
  </div>
  <span class="ui-search-item__location">Pocitos, Montevideo</span>
</li>`, title, href, symbol, fraction)
}

func TestParsePage(t *testing.T) {
	body := searchPage(
		listingItem("Apto 2 dormitorios 58 m2", "https://apartamento.example.uy/apto-pocitos_JM#position=1", "$", "30.000"),
		listingItem("Monoambiente en alquiler", "https://apartamento.example.uy/mono-pocitos_JM", "$", "18.000"),
	)

	listings, err := newTestParser(nil).ParsePage(body, "pocitos")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Apto 2 dormitorios 58 m2", first.Title)
	assert.Equal(t, 30000, *first.RentPrice)
	assert.Equal(t, "pocitos", first.NeighborhoodQuery)
	assert.Equal(t, "30.000", *first.TotalPriceFormatted)
	assert.Equal(t, "Pocitos, Montevideo", first.Location)
	assert.Equal(t, 2, *first.Bedrooms)
	assert.Equal(t, "58 m2", first.Area)
	assert.Nil(t, first.MaintenanceFee)
	// The position fragment is tracking noise, not identity
	assert.Equal(t, "https://apartamento.example.uy/apto-pocitos_JM", first.URL)

	second := listings[1]
	assert.Equal(t, "Monoambiente en alquiler", second.Title)
	assert.Equal(t, 18000, *second.RentPrice)
	assert.Nil(t, second.Bedrooms)
	assert.Equal(t, "", second.Area)
}

func TestParsePageUSDConversion(t *testing.T) {
	body := searchPage(
		listingItem("Apto 2 dormitorios", "https://apartamento.example.uy/apto-usd_JM", "US$", "1000"),
	)

	listings, err := newTestParser(nil).ParsePage(body, "pocitos")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, 40000, *listings[0].RentPrice)
	assert.Equal(t, "40.000", *listings[0].TotalPriceFormatted)
}

func TestParsePageFallbackContainerSelector(t *testing.T) {
	body := []byte(`<html><body>
<div class="ui-search-result">
  <h2 class="ui-search-item__title">Apto 2 dormitorios</h2>
  <a class="ui-search-link" href="https://apartamento.example.uy/apto-viejo_JM"></a>
  <span class="price-tag-fraction">25.000</span>
</div>
</body></html>`)

	listings, err := newTestParser(nil).ParsePage(body, "cordon")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Apto 2 dormitorios", listings[0].Title)
	assert.Equal(t, 25000, *listings[0].RentPrice)
}

func TestParsePageTitleFallsBackToSlug(t *testing.T) {
	body := []byte(`<html><body>
<li class="ui-search-layout__item">
  <a class="ui-search-link" href="https://apartamento.example.uy/apto-luminoso-en-pocitos_JM"></a>
</li>
</body></html>`)

	listings, err := newTestParser(nil).ParsePage(body, "pocitos")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "apto luminoso en pocitos", listings[0].Title)
	assert.Nil(t, listings[0].RentPrice)
	assert.Nil(t, listings[0].TotalPriceFormatted)
}

func TestParsePageNoContainers(t *testing.T) {
	listings, err := newTestParser(nil).ParsePage([]byte("<html><body><p>sin resultados</p></body></html>"), "pocitos")
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestParsePageWithEnrichment(t *testing.T) {
	detail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p class="ui-pdp-maintenance-fee-ltr">Gastos comunes $ 3.500</p></body></html>`))
	}))
	defer detail.Close()

	body := searchPage(
		listingItem("Apto 2 dormitorios", detail.URL+"/apto-pocitos_JM", "$", "30.000"),
	)

	listings, err := newTestParser(NewEnricher()).ParsePage(body, "pocitos")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, 3500, *listings[0].MaintenanceFee)
	// The displayed total is rent plus fee
	assert.Equal(t, "33.500", *listings[0].TotalPriceFormatted)
}

func TestParsePageContainerFailureIsolated(t *testing.T) {
	// A handler blowing up on one container must not take down the page.
	exploding := ElementHandler(func(s *goquery.Selection) string {
		if strings.Contains(s.Text(), "Apto fallado") {
			panic("selector blew up")
		}
		return ""
	})
	titleHandlers = append([]ElementHandler{exploding}, titleHandlers...)
	defer func() { titleHandlers = titleHandlers[1:] }()

	body := searchPage(
		listingItem("Apto fallado", "https://apartamento.example.uy/apto-roto_JM", "$", "20.000"),
		listingItem("Apto 2 dormitorios al frente", "https://apartamento.example.uy/apto-sano_JM", "$", "30.000"),
	)

	listings, err := newTestParser(nil).ParsePage(body, "pocitos")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Apto 2 dormitorios al frente", listings[0].Title)
}

func TestApplyHandlersFirstMatchWins(t *testing.T) {
	body := searchPage(
		`<li class="ui-search-layout__item">
  <h2 class="ui-search-item__title">Titulo principal</h2>
  <div class="ui-search-item__highlight-label">Destacado</div>
  <a class="ui-search-link" href="https://apartamento.example.uy/apto_JM"></a>
</li>`,
	)

	listings, err := newTestParser(nil).ParsePage(body, "pocitos")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Titulo principal", listings[0].Title)
}
