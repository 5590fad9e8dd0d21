package main

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rentscout/config"
	"rentscout/helpers"
	"rentscout/internal/scraper"
	"rentscout/logger"
	"rentscout/services/cache"
	"rentscout/services/history"
	"rentscout/services/publisher"
)

var (
	flagVerbose      bool
	flagNeighborhood string
	flagConfig       string
	flagClearHistory bool
	flagNoDedup      bool
	flagNoFees       bool
)

var rootCmd = &cobra.Command{
	Use:   "rentscout",
	Short: "Scrapes apartment rental listings from MercadoLibre Uruguay",
	Long: `Rentscout searches the configured neighborhoods for apartment rentals,
filters the results against exclusion words and room-count criteria,
deduplicates against prior runs, and emits one JSON record per accepted
listing on stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable detailed logging")
	rootCmd.Flags().StringVarP(&flagNeighborhood, "neighborhood", "n", "", "search a single configured neighborhood")
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "config.yaml", "path to the search configuration file")
	rootCmd.Flags().BoolVar(&flagClearHistory, "clear-history", false, "clear the visited-listings history and exit")
	rootCmd.Flags().BoolVar(&flagNoDedup, "no-dedup", false, "disable duplicate filtering for this run")
	rootCmd.Flags().BoolVar(&flagNoFees, "no-fees", false, "skip fetching maintenance fees from detail pages")
}

func main() {
	// Load environment variables
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger.Init(flagVerbose)
	log := logger.Default

	// Load and validate configuration; nothing touches the network before
	// this succeeds.
	cfg, err := config.Load(flagConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if flagClearHistory {
		if err := history.Clear(cfg.Dedup.HistoryFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear history")
		}
		log.Info().Str("file", cfg.Dedup.HistoryFile).Msg("Visited-listings history cleared")
		return nil
	}

	hist, err := history.Load(cfg.Dedup.HistoryFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load visited-listings history")
	}
	logger.Info("Loaded %d visited listings from %s", hist.Len(), cfg.Dedup.HistoryFile)

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	} else {
		cacheSvc = cache.NewMemoryCache()
	}

	var enricher *scraper.Enricher
	if cfg.MaintenanceFees.Enabled && !flagNoFees {
		enricher = scraper.NewEnricher()
	}

	dedupe := cfg.Dedup.Enabled && !flagNoDedup
	filter := scraper.NewFilter(cfg, hist, dedupe)
	parser := scraper.NewParser(enricher)
	searcher := scraper.NewSearcher(cfg, helpers.NewFetcher(), parser, filter, hist, cacheSvc)

	var listings []scraper.Listing
	if flagNeighborhood != "" {
		listings, err = searcher.SearchNeighborhood(flagNeighborhood)
		if err != nil {
			log.Fatal().Err(err).Strs("valid", cfg.NeighborhoodKeys()).Msg("Neighborhood search failed")
		}
	} else {
		listings = searcher.SearchAll()
	}

	publishers := []publisher.Publisher{publisher.NewStdoutPublisher(os.Stdout)}
	if cfg.RedisAddr != "" {
		publishers = append(publishers, publisher.NewRedisPublisher(
			cmd.Context(),
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		))
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}
	defer func() {
		for _, p := range publishers {
			p.Close()
		}
	}()

	for _, l := range listings {
		data, err := json.Marshal(l)
		if err != nil {
			log.Warn().Err(err).Str("url", l.URL).Msg("failed to encode listing")
			continue
		}
		for _, p := range publishers {
			if err := p.Publish(data); err != nil {
				log.Warn().Err(err).Msg("failed to publish listing")
			}
		}
	}

	return nil
}
