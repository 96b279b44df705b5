// Package pagination walks the pages of a Horizon query.
//
// Horizon reports the size of the result set in the dataset total of the
// first page. The paginator reads that total once, plans every page offset
// from it, and fetches the remaining pages one at a time in ascending order.
//
// Example usage:
//
//	p := pagination.New(fetcher, pagination.DefaultConfig())
//	for page, err := range p.FetchAll(ctx) {
//		if err != nil {
//			return err
//		}
//		// extract rows from page
//	}
//
// The paginator:
//   - Fetches the first page and reads the total
//   - Plans pages 0..total/pageSize inclusive
//   - Reuses the first page instead of fetching it twice
//   - Stops at the first fetch error (no partial recovery)
package pagination
