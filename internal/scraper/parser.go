package scraper

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rentscout/helpers"
	"rentscout/logger"
	errs "rentscout/pkg/errors"
)

// Container selector strategies, in preference order. The structural layout
// selector is tried first; the generic result class catches older markup.
const (
	containerSelector         = "li.ui-search-layout__item"
	fallbackContainerSelector = ".ui-search-result"
)

// Field selector alternatives, first match wins.
var (
	titleHandlers = []ElementHandler{
		textHandler("h2.ui-search-item__title"),
		textHandler("div.ui-search-item__highlight-label"),
		textHandler("a.ui-search-link[title]"),
		textHandler("h2.ui-search-item__group__element"),
	}

	urlHandlers = []ElementHandler{
		attrHandler("a.ui-search-link", "href"),
		attrHandler("a", "href"),
	}

	locationHandlers = []ElementHandler{
		textHandler("span.ui-search-item__location"),
		textHandler("span.ui-search-item__location-label"),
	}

	priceHandlers = []ElementHandler{
		combinedPriceHandler,
		textHandler("span.price-tag-fraction"),
		textHandler("span.ui-search-price__part--second-line"),
	}
)

// combinedPriceHandler assembles the price text from the money-amount
// fraction and cents spans, prefixed with the currency symbol so the price
// extractor can tell pesos from USD. Preferred over the flat selectors.
func combinedPriceHandler(s *goquery.Selection) string {
	frac := s.Find("span.andes-money-amount__fraction").First()
	if frac.Length() == 0 {
		return ""
	}

	symbol := trimJoin(s.Find("span.andes-money-amount__currency-symbol").First().Text())
	if symbol == "" {
		symbol = "$"
	}

	raw := symbol + " " + trimJoin(frac.Text())
	if cents := s.Find("span.andes-money-amount__cents").First(); cents.Length() > 0 {
		raw += "," + trimJoin(cents.Text())
	}
	return raw
}

// Parser extracts listing candidates from one search results page.
type Parser struct {
	enricher    *Enricher // nil when fee enrichment is disabled
	detailDelay func()
	log         *logger.Logger
}

// NewParser creates a parser. Pass a nil enricher to skip maintenance-fee
// lookups.
func NewParser(enricher *Enricher) *Parser {
	return &Parser{
		enricher: enricher,
		// Detail pages are rate limited separately from search pages.
		detailDelay: func() { helpers.RandomDelay(2*time.Second, 4*time.Second) },
		log:         logger.ForParser(),
	}
}

// ParsePage extracts all listing candidates from the page markup, in
// container order. A failure inside one container skips that container only.
func (p *Parser) ParsePage(body []byte, neighborhoodQuery string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errs.NewParsing("", "failed to parse page markup", err)
	}

	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		containers = doc.Find(fallbackContainerSelector)
	}
	p.log.Debug().Int("containers", containers.Length()).Msg("located listing containers")

	var listings []Listing
	containers.Each(func(i int, s *goquery.Selection) {
		if l := p.extractListing(s, neighborhoodQuery); l != nil {
			listings = append(listings, *l)
		}
	})
	return listings, nil
}

// extractListing pulls one candidate out of a container. Returns nil when
// extraction fails; the rest of the page is unaffected.
func (p *Parser) extractListing(s *goquery.Selection, neighborhoodQuery string) (l *Listing) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Debug().Interface("cause", r).Msg("container extraction failed, skipping")
			l = nil
		}
	}()

	url, _, _ := strings.Cut(applyHandlers(s, urlHandlers), "#")

	title := applyHandlers(s, titleHandlers)
	if title == "" {
		title = helpers.SlugFromURL(url)
	}

	rentPrice := helpers.ExtractPrice(applyHandlers(s, priceHandlers))
	location := applyHandlers(s, locationHandlers)

	flat := strings.ToLower(trimJoin(s.Text()))
	bedrooms := helpers.ExtractBedrooms(flat)
	area := helpers.ExtractArea(flat)

	var fee *int
	if p.enricher != nil && url != "" {
		fee = p.enricher.MaintenanceFee(url)
		p.detailDelay()
	}

	var totalFormatted *string
	if rentPrice != nil {
		total := *rentPrice
		if fee != nil {
			total += *fee
		}
		tf := helpers.FormatThousands(total)
		totalFormatted = &tf
	}

	return &Listing{
		Title:               title,
		RentPrice:           rentPrice,
		NeighborhoodQuery:   neighborhoodQuery,
		TotalPriceFormatted: totalFormatted,
		Location:            location,
		Bedrooms:            bedrooms,
		Area:                area,
		MaintenanceFee:      fee,
		URL:                 url,
	}
}

// trimJoin flattens whitespace runs, the way a rendered page reads.
func trimJoin(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
