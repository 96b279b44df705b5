package pagination

import (
	"context"
	"fmt"
	"iter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/xmlpage"
)

var pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
	Name: "horizon_pages_fetched_total",
	Help: "Result pages fetched and parsed",
})

// DefaultPageSize is the pageSize requested from Horizon.
const DefaultPageSize = 500

// Config holds paginator configuration.
type Config struct {
	// PageSize is the number of rows requested per page.
	PageSize int
}

// DefaultConfig returns the default paginator configuration.
func DefaultConfig() Config {
	return Config{PageSize: DefaultPageSize}
}

// PageFetcher fetches and parses one page of a query.
type PageFetcher interface {
	FetchPage(ctx context.Context, start, pageSize int) (*xmlpage.Page, error)
}

// PageCount returns the zero-based index of the last planned page.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return total / pageSize
}

// Plan returns the page indexes to visit. The range is inclusive of
// PageCount, so an exact multiple of pageSize plans one trailing page that
// comes back empty: total=1000, pageSize=500 plans {0, 1, 2}.
func Plan(total, pageSize int) []int {
	last := PageCount(total, pageSize)
	plan := make([]int, last+1)
	for i := range plan {
		plan[i] = i
	}
	return plan
}

// Paginator drives sequential page fetches.
type Paginator struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// New creates a paginator.
func New(fetcher PageFetcher, config Config) *Paginator {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	return &Paginator{
		fetcher: fetcher,
		config:  config,
		logger:  zerolog.Nop(),
	}
}

// WithLogger returns a copy of the paginator that logs progress to logger.
func (p *Paginator) WithLogger(logger zerolog.Logger) *Paginator {
	cp := *p
	cp.logger = logger
	return &cp
}

// FetchAll returns the pages of the query in ascending offset order. The
// sequence is single-pass; every call starts again from the first page. A
// fetch error is yielded once and ends the sequence.
func (p *Paginator) FetchAll(ctx context.Context) iter.Seq2[*xmlpage.Page, error] {
	return func(yield func(*xmlpage.Page, error) bool) {
		pageSize := p.config.PageSize

		first, err := p.fetcher.FetchPage(ctx, 0, pageSize)
		if err != nil {
			yield(nil, fmt.Errorf("fetch page 1: %w", err))
			return
		}
		pagesFetched.Inc()

		total, ok := first.Total()
		if !ok {
			p.logger.Warn().Msg("Missing or unreadable total, treating result as a single page")
		}
		plan := Plan(total, pageSize)

		p.logger.Info().
			Int("total", total).
			Int("pages", len(plan)).
			Msg("Starting page fetch")

		for _, i := range plan {
			p.logger.Debug().Msgf("checking page %d of %d", i+1, len(plan))

			page := first
			if i > 0 {
				page, err = p.fetcher.FetchPage(ctx, i*pageSize, pageSize)
				if err != nil {
					yield(nil, fmt.Errorf("fetch page %d: %w", i+1, err))
					return
				}
				pagesFetched.Inc()
			}

			if !yield(page, nil) {
				return
			}
		}
	}
}
