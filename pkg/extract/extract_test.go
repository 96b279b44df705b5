package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/xmlpage"
)

func fixedNow() time.Time {
	return time.Date(2023, 3, 20, 9, 0, 0, 0, time.UTC)
}

func variantAPage(rows string) string {
	return `<run_query_action_return><run_query_action_success><dataset><total>1</total>` +
		rows + `</dataset></run_query_action_success></run_query_action_return>`
}

func parse(t *testing.T, body string) *xmlpage.Page {
	t.Helper()
	p, err := xmlpage.Parse([]byte(body))
	require.NoError(t, err)
	return p
}

func collect(t *testing.T, page *xmlpage.Page, opts Options) ([]record.Record, error) {
	t.Helper()
	var out []record.Record
	for rec, err := range Extract(page, opts) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func TestDetect(t *testing.T) {
	a := parse(t, variantAPage(`<row><AccountNumber org_value="DA1"/></row>`))
	b := parse(t, `<rows><row><EntryAccount org_value="DA1"/></row></rows>`)

	assert.Equal(t, VariantA, Detect(a))
	assert.Equal(t, VariantB, Detect(b))
}

func TestExtract_VariantA(t *testing.T) {
	page := parse(t, variantAPage(`
		<row>
			<AccountNumber org_value=" 10.2023.5.1 "/>
			<Property org_value="1 Kendal St Cowra"/>
			<Description org_value="Dwelling"/>
			<Lodged org_value="2023-03-15T00:00:00"/>
		</row>`))

	recs, err := collect(t, page, Options{
		InfoURL:     "http://example.org/info",
		StateSuffix: "NSW",
		Now:         fixedNow,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "10.2023.5.1", *rec.CouncilReference)
	assert.Equal(t, "1 Kendal St Cowra NSW", *rec.Address)
	assert.Equal(t, "Dwelling", *rec.Description)
	assert.Equal(t, "http://example.org/info", rec.InfoURL)
	assert.Equal(t, "2023-03-15", rec.DateReceived)
	assert.Equal(t, "2023-03-20", rec.DateScraped)
	assert.Nil(t, rec.CommentURL)
}

func TestExtract_BlankPolicy(t *testing.T) {
	page := parse(t, variantAPage(`
		<row>
			<AccountNumber org_value=""/>
			<Property org_value="2 Kendal St"/>
			<Description org_value="Shed"/>
			<Lodged org_value="2023-03-15"/>
		</row>
		<row>
			<AccountNumber org_value="DA2"/>
			<Property org_value="3 Kendal St"/>
			<Description org_value=""/>
			<Lodged org_value="2023-03-16"/>
		</row>`))

	t.Run("drop by default", func(t *testing.T) {
		var dropped []record.Record
		recs, err := collect(t, page, Options{Now: fixedNow, OnDrop: func(r record.Record) { dropped = append(dropped, r) }})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		require.Len(t, dropped, 1)
		assert.Equal(t, "2 Kendal St", dropped[0].AddressOrEmpty())
		assert.Equal(t, "DA2", recs[0].Key())
		assert.Nil(t, recs[0].Description)
	})

	t.Run("keep when allowed", func(t *testing.T) {
		recs, err := collect(t, page, Options{Now: fixedNow, AllowBlanks: true})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Nil(t, recs[0].CouncilReference)
		assert.True(t, recs[0].IsIncomplete())
	})
}

func TestExtract_VariantBAddress(t *testing.T) {
	body := `<rows><row>
		<EntryAccount org_value="DA/2023/101"/>
		<PropertyDescription org_value="12 Main St, Smalltown"/>
		<Details org_value="Pool"/>
		<Lodged org_value="15/03/2023"/>
	</row></rows>`

	tests := []struct {
		name   string
		suffix string
		want   string
	}{
		{"no suffix", "", "12 Main St"},
		{"with suffix", "NSW", "12 Main St NSW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := collect(t, parse(t, body), Options{StateSuffix: tt.suffix, Now: fixedNow})
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.want, *recs[0].Address)
			assert.Equal(t, "DA/2023/101", recs[0].Key())
			assert.Equal(t, "Pool", *recs[0].Description)
		})
	}
}

func TestExtract_DateStrategies(t *testing.T) {
	tests := []struct {
		name     string
		strategy DateStrategy
		in       string
		want     string
	}{
		{"fixed format", DayMonthYear, "15/03/2023", "2023-03-15"},
		{"freeform iso", Freeform, "2023-03-15T00:00:00", "2023-03-15"},
		{"freeform day first", Freeform, "05/03/2023", "2023-03-05"},
		{"freeform day above twelve", Freeform, "15/03/2023", "2023-03-15"},
		{"freeform day first with time", Freeform, "05/03/2023 10:00:00 AM", "2023-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.in, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_MalformedDate(t *testing.T) {
	body := `<rows>
		<row><EntryAccount org_value="DA1"/><PropertyDescription org_value="1 A St"/><Lodged org_value="2023-03-15"/></row>
		<row><EntryAccount org_value="DA2"/><PropertyDescription org_value="2 A St"/><Lodged org_value="16/03/2023"/></row>
	</rows>`

	recs, err := collect(t, parse(t, body), Options{Hint: VariantB, Now: fixedNow})
	require.Error(t, err)
	assert.Empty(t, recs)
	assert.True(t, errors.Is(err, ErrMalformedDate))

	var mde *MalformedDateError
	require.ErrorAs(t, err, &mde)
	assert.Equal(t, "2023-03-15", mde.Value)
	assert.Equal(t, "day/month/year", mde.Strategy)
}

func TestExtract_EmptyLodged(t *testing.T) {
	tests := []struct {
		name string
		body string
		hint Variant
	}{
		{
			name: "variant A absent",
			body: variantAPage(`<row><AccountNumber org_value="DA1"/><Property org_value="1 A St"/></row>`),
		},
		{
			name: "variant A empty",
			body: variantAPage(`<row><AccountNumber org_value="DA1"/><Property org_value="1 A St"/><Lodged org_value=""/></row>`),
		},
		{
			name: "variant B blank",
			body: `<rows><row><EntryAccount org_value="DA1"/><PropertyDescription org_value="1 A St"/><Lodged org_value="  "/></row></rows>`,
			hint: VariantB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := collect(t, parse(t, tt.body), Options{Hint: tt.hint, Now: fixedNow})
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, "DA1", recs[0].Key())
			assert.Equal(t, "", recs[0].DateReceived)
			assert.Equal(t, "2023-03-20", recs[0].DateScraped)
		})
	}
}

func TestExtract_HintOverridesDetection(t *testing.T) {
	page := parse(t, variantAPage(`<row><AccountNumber org_value="DA1"/><EntryAccount org_value="X"/><PropertyDescription org_value="9 B St, Town"/></row>`))

	recs, err := collect(t, page, Options{Hint: VariantB, Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "X", recs[0].Key())
	assert.Equal(t, "9 B St", *recs[0].Address)
}

func TestExtract_CommentURL(t *testing.T) {
	page := parse(t, variantAPage(`<row><AccountNumber org_value="DA1"/><Property org_value="1 A St"/></row>`))

	recs, err := collect(t, page, Options{CommentURL: "mailto:council@example.org", Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].CommentURL)
	assert.Equal(t, "mailto:council@example.org", *recs[0].CommentURL)
	assert.Empty(t, recs[0].DateReceived)
}

func TestExtract_StopsEarly(t *testing.T) {
	page := parse(t, variantAPage(`
		<row><AccountNumber org_value="DA1"/><Property org_value="1 A St"/></row>
		<row><AccountNumber org_value="DA2"/><Property org_value="2 A St"/></row>`))

	n := 0
	for range Extract(page, Options{Now: fixedNow}) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
