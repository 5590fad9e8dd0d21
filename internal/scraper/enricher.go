package scraper

import (
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rentscout/helpers"
	"rentscout/logger"
)

// feeSelector targets the known maintenance-fee elements on a listing's own
// page, most specific first.
const feeSelector = `p.ui-pdp-maintenance-fee-ltr, .ui-pdp-container__row--maintenance-fee-vis p, *[id*="maintenance"]`

// Enricher fetches a listing's detail page to extract its maintenance fee.
// Enrichment is best-effort: any failure degrades to a missing fee, never an
// error for the pipeline.
type Enricher struct {
	client *http.Client
	log    *logger.Logger
}

// NewEnricher creates an enricher with the detail-page timeout.
func NewEnricher() *Enricher {
	return &Enricher{
		client: &http.Client{Timeout: 15 * time.Second},
		log:    logger.ForEnricher(),
	}
}

// MaintenanceFee issues a single GET for the listing page and extracts the
// fee, first via the known selectors, then via a text search over the whole
// page. Returns nil when the fee cannot be obtained.
func (e *Enricher) MaintenanceFee(url string) *int {
	if url == "" {
		return nil
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil
	}
	helpers.SetBrowserHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Debug().Err(err).Str("url", url).Msg("detail page fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.log.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("detail page not available")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.log.Debug().Err(err).Str("url", url).Msg("detail page parse failed")
		return nil
	}

	if el := doc.Find(feeSelector).First(); el.Length() > 0 {
		if fee := helpers.ExtractMaintenanceFee(trimJoin(el.Text())); fee != nil {
			return fee
		}
	}

	// Fallback: the fee sometimes only appears in running text.
	return helpers.ExtractMaintenanceFee(trimJoin(doc.Text()))
}
