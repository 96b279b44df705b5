// Package extract turns parsed Horizon rows into normalized records.
package extract

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/xmlpage"
)

var (
	recordsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_records_extracted_total",
		Help: "Records extracted from result pages by row layout",
	}, []string{"variant"})

	recordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "horizon_records_dropped_total",
		Help: "Records discarded for a missing council reference or address",
	})
)

// ErrMalformedDate matches every *MalformedDateError.
var ErrMalformedDate = errors.New("malformed lodged date")

// MalformedDateError reports a Lodged value the selected strategy rejected.
type MalformedDateError struct {
	Value    string
	Strategy string
	Err      error
}

// Error implements the error interface.
func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed lodged date %q (%s): %v", e.Value, e.Strategy, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedDateError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedDate) match.
func (e *MalformedDateError) Is(target error) bool {
	return target == ErrMalformedDate
}

// Options controls one extraction.
type Options struct {
	// Hint forces a layout; VariantUnknown detects it per page.
	Hint Variant

	InfoURL    string
	CommentURL string

	// StateSuffix is appended to non-empty addresses after a single space.
	StateSuffix string

	// AllowBlanks forwards records missing an identity field instead of dropping them.
	AllowBlanks bool

	// OnDrop is called for every record discarded by the blank policy.
	OnDrop func(record.Record)

	// Now supplies the scrape date. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// Extract yields one record per row of the page. A malformed Lodged value
// ends the sequence with a *MalformedDateError.
func Extract(page *xmlpage.Page, opts Options) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		variant := opts.Hint
		if variant == VariantUnknown {
			variant = Detect(page)
		}
		mapping, ok := MappingFor(variant)
		if !ok {
			yield(record.Record{}, fmt.Errorf("no field mapping for variant %s", variant))
			return
		}

		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		scraped := now().Format(record.DateLayout)

		var comment *string
		if opts.CommentURL != "" {
			comment = record.String(opts.CommentURL)
		}

		for _, row := range page.Rows() {
			rec, err := normalize(row, mapping, opts)
			if err != nil {
				yield(record.Record{}, err)
				return
			}
			rec.DateScraped = scraped
			rec.CommentURL = comment

			if rec.IsIncomplete() && !opts.AllowBlanks {
				recordsDropped.Inc()
				if opts.OnDrop != nil {
					opts.OnDrop(rec)
				}
				opts.Logger.Warn().
					Str("council_reference", rec.Key()).
					Str("address", rec.AddressOrEmpty()).
					Msg("Dropping incomplete record")
				continue
			}

			recordsExtracted.WithLabelValues(variant.String()).Inc()
			opts.Logger.Debug().Interface("record", rec).Msg("Extracted record")
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func normalize(row xmlpage.Row, m Mapping, opts Options) (record.Record, error) {
	address := row.Value(m.Address)
	if m.TruncateAddress {
		if i := strings.Index(address, ","); i >= 0 {
			address = strings.TrimSpace(address[:i])
		}
	}
	if address != "" && opts.StateSuffix != "" {
		address = address + " " + opts.StateSuffix
	}

	// An absent or empty Lodged keeps the record with an empty date_received.
	received, err := parseDate(row.Value(m.Lodged), m.Date)
	if err != nil {
		return record.Record{}, err
	}

	return record.Record{
		CouncilReference: record.String(row.Value(m.Reference)),
		Address:          record.String(address),
		Description:      record.String(row.Value(m.Description)),
		InfoURL:          opts.InfoURL,
		DateReceived:     received,
	}, nil
}

// parseDate returns "" for an absent value.
func parseDate(value string, strategy DateStrategy) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := strategy.Parse(value)
	if err != nil {
		return "", &MalformedDateError{Value: value, Strategy: strategy.Name, Err: err}
	}
	return t.Format(record.DateLayout), nil
}
