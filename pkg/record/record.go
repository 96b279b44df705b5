// Package record defines the normalized planning-application record.
package record

// UniqueKey is the field sinks upsert on.
const UniqueKey = "council_reference"

// DateLayout is the layout of DateScraped and DateReceived.
const DateLayout = "2006-01-02"

// Record is one normalized planning application. Pointer fields are nil when
// the source value was absent or empty.
type Record struct {
	CouncilReference *string `json:"council_reference" bson:"council_reference"`
	Address          *string `json:"address" bson:"address"`
	Description      *string `json:"description" bson:"description"`
	InfoURL          string  `json:"info_url" bson:"info_url"`
	CommentURL       *string `json:"comment_url,omitempty" bson:"comment_url,omitempty"`
	DateScraped      string  `json:"date_scraped" bson:"date_scraped"`
	DateReceived     string  `json:"date_received" bson:"date_received"`
}

// IsIncomplete reports whether either identity field is missing.
func (r Record) IsIncomplete() bool {
	return r.CouncilReference == nil || r.Address == nil
}

// Key returns the council reference, or "" when absent.
func (r Record) Key() string {
	return deref(r.CouncilReference)
}

// AddressOrEmpty returns the address, or "" when absent.
func (r Record) AddressOrEmpty() string {
	return deref(r.Address)
}

// Fields returns the record as a flat column map, with absent values as nil.
// Sinks that store loosely typed rows use it.
func (r Record) Fields() map[string]any {
	m := map[string]any{
		"council_reference": ptrValue(r.CouncilReference),
		"address":           ptrValue(r.Address),
		"description":       ptrValue(r.Description),
		"info_url":          r.InfoURL,
		"date_scraped":      r.DateScraped,
		"date_received":     r.DateReceived,
	}
	if r.CommentURL != nil {
		m["comment_url"] = *r.CommentURL
	}
	return m
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
