// Package query builds Horizon query-language predicates and request URLs.
//
// All percent-encoding happens in one place (encodeParams); predicates are
// kept as plain, human-readable text until the URL is assembled.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/tenant"
)

// Endpoint paths relative to a tenant base URL.
const (
	QueryPath      = "urlRequest.aw"
	GuestLoginPath = "logonGuest.aw"
	TokenLoginPath = "logonOp.aw"

	actionRunQuery = "run_query_action"
)

const orderByNumber = " ORDER BY Applications.AppYear DESC,Applications.AppNumber DESC"

// BuildQueryString returns the unencoded predicate for a period.
func BuildQueryString(p Period) string {
	switch p.Kind {
	case KindThisMonth:
		return "FIND Applications WHERE MONTH(Applications.Lodged)=CURRENT_MONTH AND " +
			"YEAR(Applications.Lodged)=CURRENT_YEAR" + orderByNumber
	case KindLastMonth:
		return "FIND Applications WHERE MONTH(Applications.Lodged-1)=SystemSettings.SearchMonthPrevious AND " +
			"YEAR(Applications.Lodged)=SystemSettings.SearchYear AND " +
			"Applications.CanDisclose='Yes'" + orderByNumber
	case KindYear:
		return fmt.Sprintf("FIND Applications WHERE Applications.AppYear=%d AND "+
			"Applications.CanDisclose='Yes' ORDER BY Applications.Lodged DESC,"+
			"Applications.AppYear DESC,Applications.AppNumber DESC", p.Year)
	default:
		return "FIND Applications WHERE WEEK(Applications.Lodged)=CURRENT_WEEK-1 AND " +
			"YEAR(Applications.Lodged)=CURRENT_YEAR AND " +
			"Applications.CanDisclose='Yes'" + orderByNumber
	}
}

// PageRequest is one run_query_action request.
type PageRequest struct {
	BaseURL     string
	QueryString string
	QueryName   string
	Take        int
	Skip        int
	Start       int
	PageSize    int
}

// NewPageRequest fills a PageRequest for a tenant, period and window.
func NewPageRequest(t tenant.Config, p Period, start, pageSize int) PageRequest {
	take := t.Take
	if take <= 0 {
		take = tenant.DefaultTake
	}
	return PageRequest{
		BaseURL:     t.BaseURL,
		QueryString: BuildQueryString(p),
		QueryName:   p.QueryName(),
		Take:        take,
		Skip:        0,
		Start:       start,
		PageSize:    pageSize,
	}
}

// URL renders the request. Parameter order is fixed so the result is
// byte-identical for identical inputs.
func (r PageRequest) URL() string {
	return r.BaseURL + QueryPath + "?" + encodeParams([][2]string{
		{"actionType", actionRunQuery},
		{"query_string", r.QueryString},
		{"query_name", r.QueryName},
		{"take", strconv.Itoa(r.Take)},
		{"skip", strconv.Itoa(r.Skip)},
		{"start", strconv.Itoa(r.Start)},
		{"pageSize", strconv.Itoa(r.PageSize)},
	})
}

// BuildURL assembles the full query URL for one page.
func BuildURL(t tenant.Config, p Period, start, pageSize int) string {
	return NewPageRequest(t, p, start, pageSize).URL()
}

// LoginURL returns the session-establishing URL for a tenant.
func LoginURL(t tenant.Config) string {
	if t.Login == tenant.LoginToken {
		return t.BaseURL + TokenLoginPath + "?" + encodeParams([][2]string{{"e", t.DomainToken}}) + "#/home"
	}
	return t.BaseURL + GuestLoginPath + "?" + encodeParams([][2]string{{"domain", t.DomainToken}})
}

// encodeParams joins ordered key/value pairs with form encoding.
// url.Values is not used because it sorts keys.
func encodeParams(params [][2]string) string {
	var b strings.Builder
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}
