package scraper

import (
	"context"
	"fmt"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/client"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/query"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/tenant"
)

// Establish creates a fresh client and logs in to the tenant. The returned client
// carries the session cookie and belongs to this tenant run only.
func Establish(ctx context.Context, cfg client.Config, t tenant.Config) (*client.Client, error) {
	c, err := client.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	if err := c.Login(ctx, query.LoginURL(t)); err != nil {
		c.Close()
		return nil, fmt.Errorf("tenant %s: %w", t.Key, err)
	}
	return c, nil
}
