package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/client"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/config"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/logging"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/metrics"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/query"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/scraper"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/store"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/tenant"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	cfg        config.Config
	registry   *tenant.Registry
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "horizon-scraper",
		Short:         "Scrapes planning applications from Horizon council deployments.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "horizon.yaml", "Path to the YAML configuration file.")

	root.AddCommand(newScrapeCmd(a), newTenantsCmd(a), newQueryURLCmd(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	registry, err := tenant.NewRegistry(cfg.Tenants)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.registry = registry
	return nil
}

func newScrapeCmd(a *app) *cobra.Command {
	var (
		period      string
		allowBlanks bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "scrape [tenant...]",
		Short: "Scrapes the given tenants, or every registered tenant when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("period") {
				a.cfg.Period = period
			}
			if cmd.Flags().Changed("allow-blanks") {
				a.cfg.AllowBlanks = allowBlanks
			}
			if dryRun {
				a.cfg.Store.Driver = store.DriverJSONL
			}

			keys := args
			if len(keys) == 0 {
				keys = a.registry.Keys()
			}
			return a.scrape(cmd.Context(), keys)
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Period filter: thisweek, thismonth, lastmonth or a year (>= 1960).")
	cmd.Flags().BoolVar(&allowBlanks, "allow-blanks", false, "Keep records without a council reference or address.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write records to stdout as JSON lines instead of the configured store.")
	return cmd
}

func (a *app) scrape(ctx context.Context, keys []string) error {
	if a.cfg.MetricsAddr != "" {
		srv := metrics.Start(a.cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	var sink store.Sink
	var err error
	if a.cfg.Store.Driver == store.DriverJSONL {
		sink = store.NewJSONL(a.out)
	} else {
		sink, err = store.Open(ctx, a.cfg.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
	}
	defer sink.Close()

	s := scraper.New(a.registry, sink, scraper.Options{
		Client: client.Config{
			UserAgent: a.cfg.UserAgent,
			Timeout:   a.cfg.Timeout,
		},
		Period:            query.ParsePeriod(a.cfg.Period),
		PageSize:          a.cfg.PageSize,
		AllowBlanks:       a.cfg.AllowBlanks,
		IncludeCommentURL: a.cfg.IncludeCommentURL,
	})

	var failed []string
	for _, key := range keys {
		summary, err := s.Run(ctx, key)
		if err != nil {
			failed = append(failed, key)
			log.Error().
				Err(err).
				Str("tenant", key).
				Int("saved", summary.Saved).
				Msg("Tenant failed")
			if errors.Is(err, context.Canceled) {
				break
			}
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d tenants failed: %s", len(failed), len(keys), strings.Join(failed, ", "))
	}
	return nil
}

func newTenantsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tenants",
		Short: "Lists the registered tenants.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range a.registry.Keys() {
				t, err := a.registry.Resolve(key)
				if err != nil {
					return err
				}
				period := t.FixedPeriod
				if period == "" {
					period = "-"
				}
				fmt.Fprintf(a.out, "%-18s %-10s %s\n", key, period, t.BaseURL)
			}
			return nil
		},
	}
}

func newQueryURLCmd(a *app) *cobra.Command {
	var start int

	cmd := &cobra.Command{
		Use:   "query-url <tenant> [period]",
		Short: "Prints the login and query URLs for a tenant without fetching them.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.registry.Resolve(args[0])
			if err != nil {
				return err
			}

			period := query.ParsePeriod(a.cfg.Period)
			if len(args) == 2 {
				period = query.ParsePeriod(args[1])
			}
			if t.HasFixedPeriod() {
				period = query.ParsePeriod(t.FixedPeriod)
			}

			fmt.Fprintln(a.out, query.LoginURL(t))
			fmt.Fprintln(a.out, query.BuildURL(t, period, start, a.cfg.PageSize))
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Row offset of the page.")
	return cmd
}
