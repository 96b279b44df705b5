package scraper

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/client"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/query"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/tenant"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/xmlpage"
)

// queryFetcher fetches pages of one tenant/period query over an
// established session.
type queryFetcher struct {
	client *client.Client
	tenant tenant.Config
	period query.Period
	logger zerolog.Logger

	pages int
}

func (f *queryFetcher) FetchPage(ctx context.Context, start, pageSize int) (*xmlpage.Page, error) {
	url := query.BuildURL(f.tenant, f.period, start, pageSize)
	f.logger.Debug().Str("url", url).Int("start", start).Msg("Fetching page")

	body, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	f.pages++

	page, err := xmlpage.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("start %d: %w", start, err)
	}
	return page, nil
}
