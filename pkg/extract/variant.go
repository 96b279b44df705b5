package extract

import (
	"time"

	"github.com/araddon/dateparse"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/xmlpage"
)

// Variant is one of the known row layouts.
type Variant int

const (
	// VariantUnknown asks Extract to detect the layout from the page.
	VariantUnknown Variant = iota

	// VariantA is the shared-instance layout (AccountNumber/Property/Description).
	VariantA

	// VariantB is the standalone-instance layout (EntryAccount/PropertyDescription/Details).
	VariantB
)

func (v Variant) String() string {
	switch v {
	case VariantA:
		return "A"
	case VariantB:
		return "B"
	default:
		return "unknown"
	}
}

// probeField exists only in VariantA rows.
const probeField = "AccountNumber"

// Detect picks the layout of a page.
func Detect(p *xmlpage.Page) Variant {
	if p.Has(probeField) {
		return VariantA
	}
	return VariantB
}

// DateStrategy parses a Lodged value.
type DateStrategy struct {
	Name  string
	Parse func(string) (time.Time, error)
}

// FixedLayoutDate is the day/month/year layout used by VariantB.
const FixedLayoutDate = "2/1/2006"

var (
	// Freeform accepts any date-time representation dateparse understands.
	// Slashed dates are read day first.
	Freeform = DateStrategy{
		Name: "freeform",
		Parse: func(s string) (time.Time, error) {
			return dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
		},
	}

	// DayMonthYear accepts exactly FixedLayoutDate.
	DayMonthYear = DateStrategy{
		Name:  "day/month/year",
		Parse: func(s string) (time.Time, error) { return time.Parse(FixedLayoutDate, s) },
	}
)

// Mapping describes how a layout's fields map onto a record.
type Mapping struct {
	Reference   string
	Address     string
	Description string
	Lodged      string
	Date        DateStrategy

	// TruncateAddress keeps only the text before the first comma.
	TruncateAddress bool
}

var mappings = map[Variant]Mapping{
	VariantA: {
		Reference:   "AccountNumber",
		Address:     "Property",
		Description: "Description",
		Lodged:      "Lodged",
		Date:        Freeform,
	},
	VariantB: {
		Reference:       "EntryAccount",
		Address:         "PropertyDescription",
		Description:     "Details",
		Lodged:          "Lodged",
		Date:            DayMonthYear,
		TruncateAddress: true,
	},
}

// MappingFor returns the field mapping of a known variant.
func MappingFor(v Variant) (Mapping, bool) {
	m, ok := mappings[v]
	return m, ok
}
