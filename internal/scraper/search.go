package scraper

import (
	"fmt"
	"time"

	"rentscout/config"
	"rentscout/helpers"
	"rentscout/logger"
	errs "rentscout/pkg/errors"
	"rentscout/services/cache"
	"rentscout/services/history"
)

// defaultBaseURL is the marketplace host the search URLs are built against.
const defaultBaseURL = "https://listado.mercadolibre.com.uy"

// pageSize is the marketplace's fixed results-per-page count; pagination is
// a path-embedded offset in multiples of it.
const pageSize = 50

// rateLimitBlockTime is how long a neighborhood stays blocked after its
// retries were exhausted on HTTP 429.
const rateLimitBlockTime = 500 * time.Second

// Searcher drives pagination per neighborhood and aggregates accepted
// listings across neighborhoods. Everything runs on a single thread of
// control; the randomized sleeps are deliberate pacing, not incidental
// blocking.
type Searcher struct {
	cfg     *config.Config
	fetcher *helpers.Fetcher
	parser  *Parser
	filter  *Filter
	history *history.Store
	cache   cache.CacheService
	log     *logger.Logger

	baseURL           string
	pageDelay         func()
	neighborhoodDelay func()
}

// NewSearcher wires the pipeline together for one run.
func NewSearcher(
	cfg *config.Config,
	fetcher *helpers.Fetcher,
	parser *Parser,
	filter *Filter,
	hist *history.Store,
	cacheSvc cache.CacheService,
) *Searcher {
	return &Searcher{
		cfg:               cfg,
		fetcher:           fetcher,
		parser:            parser,
		filter:            filter,
		history:           hist,
		cache:             cacheSvc,
		log:               logger.ForSearcher(),
		baseURL:           defaultBaseURL,
		pageDelay:         func() { helpers.RandomDelay(5*time.Second, 8*time.Second) },
		neighborhoodDelay: func() { helpers.RandomDelay(10*time.Second, 15*time.Second) },
	}
}

// SearchAll searches every configured neighborhood in a stable order. A
// failure in one neighborhood is logged and the run continues with the next.
func (s *Searcher) SearchAll() []Listing {
	keys := s.cfg.NeighborhoodKeys()

	var all []Listing
	for i, key := range keys {
		listings, err := s.SearchNeighborhood(key)
		if err != nil {
			s.log.Warn().Err(err).Str("neighborhood", key).Msg("neighborhood search failed")
		}
		all = append(all, listings...)

		if i < len(keys)-1 {
			s.neighborhoodDelay()
		}
	}

	s.log.Info().Int("listings", len(all)).Msg("search finished")
	return all
}

// SearchNeighborhood paginates one neighborhood up to the page cap,
// returning the accepted listings in page-then-container order. Whatever was
// collected before a failure is still returned.
func (s *Searcher) SearchNeighborhood(key string) ([]Listing, error) {
	slug, ok := s.cfg.Neighborhoods[key]
	if !ok {
		return nil, fmt.Errorf("unknown neighborhood %q", key)
	}

	if s.isBlocked(slug) {
		s.log.Warn().Str("neighborhood", key).Msg("neighborhood is rate-limit blocked, skipping")
		return nil, nil
	}

	seed := s.seedURL(slug)
	log := s.log.WithField("neighborhood", key)

	var results []Listing
	for page := 1; page <= s.cfg.MaxPages; page++ {
		url := PageURL(seed, page)
		log.Debug().Int("page", page).Str("url", url).Msg("fetching page")

		body, err := s.fetcher.FetchPage(url)
		if err != nil {
			switch {
			case errs.IsHardStop(err):
				log.Debug().Err(err).Msg("listing series blocked or removed, abandoning neighborhood")
			case errs.IsSoftBlock(err):
				log.Debug().Err(err).Msg("probable soft block, abandoning neighborhood")
			default:
				if errs.IsRateLimit(err) {
					s.setBlocked(slug)
				}
				log.Debug().Err(err).Msg("page fetch failed, ending pagination")
			}
			return results, nil
		}

		candidates, err := s.parser.ParsePage(body, slug)
		if err != nil {
			return results, err
		}

		accepted := 0
		for i := range candidates {
			c := candidates[i]
			if !s.filter.Accepts(&c) {
				continue
			}
			// Record at emission time: a crash after this point still
			// leaves the URL marked visited.
			if s.filter.DedupeEnabled() {
				if err := s.history.Add(c.URL); err != nil {
					log.Debug().Err(err).Str("url", c.URL).Msg("failed to record visited listing")
				}
			}
			results = append(results, c)
			accepted++
		}
		log.Debug().Int("page", page).Int("accepted", accepted).Msg("page processed")

		if accepted == 0 {
			break
		}
		if page < s.cfg.MaxPages {
			s.pageDelay()
		}
	}

	return results, nil
}

// seedURL builds the page-1 search URL from the configured template
// parameters.
func (s *Searcher) seedURL(slug string) string {
	recency := ""
	if s.cfg.URL.Last24h {
		recency = "_PublishedToday_YES"
	}
	return fmt.Sprintf("%s/inmuebles/apartamentos/%d-dormitorios/%s/%s_PriceRange_%dUYU-%dUYU%s_NoIndex_True",
		s.baseURL,
		s.cfg.URL.Bedrooms,
		s.cfg.URL.Department,
		slug,
		s.cfg.URL.MinPrice,
		s.cfg.URL.MaxPrice,
		recency,
	)
}

// PageURL derives the page-N URL. Page 1 is the seed verbatim; later pages
// append a path-embedded offset segment.
func PageURL(seed string, page int) string {
	if page <= 1 {
		return seed
	}
	return fmt.Sprintf("%s_Desde_%d", seed, (page-1)*pageSize)
}

func (s *Searcher) isBlocked(slug string) bool {
	if s.cache == nil {
		return false
	}
	_, err := s.cache.Get(blockKey(slug))
	return err == nil
}

func (s *Searcher) setBlocked(slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(blockKey(slug), []byte(fmt.Sprintf("%d", rateLimitBlockTime/time.Second)), rateLimitBlockTime); err != nil {
		s.log.Debug().Err(err).Str("slug", slug).Msg("failed to set rate-limit block")
	}
}

func blockKey(slug string) string {
	return slug + "_rate_limited"
}
