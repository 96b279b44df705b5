// Package scraper runs tenant scrapes end to end: login, page through the
// query, normalize rows and hand each record to a sink.
package scraper

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/client"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/extract"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/logging"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/pagination"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/query"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/store"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/tenant"
)

var (
	scrapeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_scrape_runs_total",
		Help: "Tenant scrapes by outcome",
	}, []string{"tenant", "result"})

	scrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "horizon_scrape_duration_seconds",
		Help:    "Tenant scrape duration in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	}, []string{"tenant"})
)

// Options controls every run of a Scraper.
type Options struct {
	Client client.Config

	// Period applies to tenants without a fixed period.
	Period   query.Period
	PageSize int

	AllowBlanks       bool
	IncludeCommentURL bool

	// Now supplies the scrape date. Defaults to time.Now.
	Now func() time.Time
}

// Summary describes one tenant run. Completed is false when the run stopped
// on an error; Saved then counts the records delivered before it.
type Summary struct {
	Tenant    string
	Period    query.Period
	RunID     string
	Pages     int
	Saved     int
	Dropped   int
	Completed bool
}

// Scraper scrapes tenants from a registry into a sink.
type Scraper struct {
	registry *tenant.Registry
	sink     store.Sink
	opts     Options
}

// New creates a scraper.
func New(registry *tenant.Registry, sink store.Sink, opts Options) *Scraper {
	if opts.PageSize <= 0 {
		opts.PageSize = pagination.DefaultPageSize
	}
	return &Scraper{registry: registry, sink: sink, opts: opts}
}

// PeriodFor returns the period used for a tenant.
func (s *Scraper) PeriodFor(t tenant.Config) query.Period {
	if t.HasFixedPeriod() {
		return query.ParsePeriod(t.FixedPeriod)
	}
	return s.opts.Period
}

// run carries the state of one tenant scrape.
type run struct {
	tenant  tenant.Config
	period  query.Period
	logger  zerolog.Logger
	fetcher *queryFetcher
	dropped int
}

// Records returns the records of one tenant as a lazy sequence. Each call
// logs in again with a new session. The sequence ends at the first error.
func (s *Scraper) Records(ctx context.Context, t tenant.Config) iter.Seq2[record.Record, error] {
	r := &run{
		tenant: t,
		period: s.PeriodFor(t),
		logger: logging.ForRun("scraper", t.Key, uuid.NewString()),
	}
	return s.records(ctx, r)
}

func (s *Scraper) records(ctx context.Context, r *run) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		t := r.tenant

		r.logger.Info().
			Str("period", r.period.String()).
			Str("base_url", t.BaseURL).
			Msg("Scraping tenant")

		c, err := Establish(ctx, s.opts.Client, t)
		if err != nil {
			yield(record.Record{}, err)
			return
		}
		defer c.Close()

		r.fetcher = &queryFetcher{client: c, tenant: t, period: r.period, logger: r.logger}
		opts := s.extractOptions(r)

		if t.Flow == tenant.FlowSinglePage {
			for rec, err := range singlePage(ctx, r.fetcher, s.opts.PageSize, opts) {
				if !yield(rec, err) || err != nil {
					return
				}
			}
			return
		}

		p := pagination.New(r.fetcher, pagination.Config{PageSize: s.opts.PageSize}).WithLogger(r.logger)
		for page, err := range p.FetchAll(ctx) {
			if err != nil {
				yield(record.Record{}, err)
				return
			}
			for rec, err := range extract.Extract(page, opts) {
				if !yield(rec, err) || err != nil {
					return
				}
			}
		}
	}
}

func (s *Scraper) extractOptions(r *run) extract.Options {
	loginURL := query.LoginURL(r.tenant)

	opts := extract.Options{
		InfoURL:     loginURL,
		StateSuffix: r.tenant.StateSuffix,
		AllowBlanks: s.opts.AllowBlanks,
		Now:         s.opts.Now,
		Logger:      r.logger,
		OnDrop:      func(record.Record) { r.dropped++ },
	}
	if s.opts.IncludeCommentURL {
		opts.CommentURL = r.tenant.CommentURL
		if opts.CommentURL == "" {
			opts.CommentURL = loginURL
		}
	}
	return opts
}

// Run scrapes one tenant into the sink. Records saved before an error stay
// saved; the returned Summary reports how far the run got.
func (s *Scraper) Run(ctx context.Context, key string) (Summary, error) {
	t, err := s.registry.Resolve(key)
	if err != nil {
		return Summary{Tenant: key}, err
	}

	r := &run{
		tenant: t,
		period: s.PeriodFor(t),
	}
	summary := Summary{Tenant: key, Period: r.period, RunID: uuid.NewString()}
	r.logger = logging.ForRun("scraper", key, summary.RunID)

	if t.UsesPlaceholderToken() {
		r.logger.Warn().Msgf("No login token configured, set tenants.%s.domain_token", key)
	}

	start := time.Now()
	defer func() {
		scrapeDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
	}()

	err = s.drain(ctx, r, &summary)

	summary.Dropped = r.dropped
	if r.fetcher != nil {
		summary.Pages = r.fetcher.pages
	}

	if err != nil {
		scrapeRuns.WithLabelValues(key, "error").Inc()
		r.logger.Error().Err(err).Int("saved", summary.Saved).Msg("Scrape aborted")
		return summary, err
	}

	summary.Completed = true
	scrapeRuns.WithLabelValues(key, "ok").Inc()
	r.logger.Info().
		Int("pages", summary.Pages).
		Int("saved", summary.Saved).
		Int("dropped", summary.Dropped).
		Msg("Scrape complete")
	return summary, nil
}

func (s *Scraper) drain(ctx context.Context, r *run, summary *Summary) error {
	for rec, err := range s.records(ctx, r) {
		if err != nil {
			return err
		}

		r.logger.Info().
			Str("council_reference", rec.Key()).
			Str("address", rec.AddressOrEmpty()).
			Msg("Saving record")

		if err := s.sink.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
		summary.Saved++
	}
	return nil
}
