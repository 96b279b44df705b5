package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
)

// JSONL writes one JSON object per record. It never deduplicates; it is
// meant for dry runs and piping into other tools.
type JSONL struct {
	enc *json.Encoder
}

// NewJSONL writes to w. The writer is not closed by Close.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(w)}
}

// Upsert writes rec as a single line.
func (j *JSONL) Upsert(_ context.Context, rec record.Record) error {
	err := j.enc.Encode(rec)
	observe(DriverJSONL, err)
	if err != nil {
		return fmt.Errorf("encode %q: %w", rec.Key(), err)
	}
	return nil
}

// Close implements Sink.
func (j *JSONL) Close() error {
	return nil
}
