package scraper

import (
	"context"
	"fmt"
	"iter"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/extract"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
)

// singlePage serves tenants whose query is one fixed request: no total is
// read and no further pages are requested. Rows use the standalone layout.
func singlePage(ctx context.Context, f *queryFetcher, pageSize int, opts extract.Options) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		page, err := f.FetchPage(ctx, 0, pageSize)
		if err != nil {
			yield(record.Record{}, fmt.Errorf("fetch page 1: %w", err))
			return
		}

		opts.Hint = extract.VariantB
		for rec, err := range extract.Extract(page, opts) {
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}
