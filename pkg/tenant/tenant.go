// Package tenant holds the static table of Horizon council deployments.
//
// Each supported council is a row of data, not a branch in code: adding a
// council means adding a Config to the defaults table below.
package tenant

import (
	"errors"
	"fmt"
	"sort"

	"dario.cat/mergo"
)

// ErrUnknownTenant is returned when a tenant key is not registered.
var ErrUnknownTenant = errors.New("unknown tenant")

// LoginKind selects how a guest session is established.
type LoginKind int

const (
	// LoginGuest uses logonGuest.aw?domain=<DomainToken>.
	LoginGuest LoginKind = iota

	// LoginToken uses logonOp.aw?e=<DomainToken>#/home with an opaque pre-signed token.
	LoginToken
)

// Flow selects how result pages are retrieved once logged in.
type Flow int

const (
	// FlowPaginated reads the total from the first page and walks every page.
	FlowPaginated Flow = iota

	// FlowSinglePage issues exactly one query request.
	FlowSinglePage
)

// Default vendor parameters.
const (
	// SolorientBaseURL is the shared cloud instance hosting most councils.
	SolorientBaseURL = "http://myhorizon.solorient.com.au/Horizon/"

	// DefaultTake is the vendor "take" parameter for the shared instance.
	DefaultTake = 50

	// SinglePageTake is the vendor "take" parameter for single-page tenants.
	SinglePageTake = 100

	// PlaceholderToken stands in for Maitland's pre-signed login token, which
	// is issued per deployment. Set tenants.maitland.domain_token in config.
	PlaceholderToken = "unset-maitland-token"
)

// Config identifies one council deployment.
type Config struct {
	Key         string    `yaml:"-"`
	BaseURL     string    `yaml:"base_url"`
	DomainToken string    `yaml:"domain_token"`
	FixedPeriod string    `yaml:"fixed_period"`
	StateSuffix string    `yaml:"state_suffix"`
	CommentURL  string    `yaml:"comment_url"`
	Login       LoginKind `yaml:"-"`
	Flow        Flow      `yaml:"-"`
	Take        int       `yaml:"take"`
}

// HasFixedPeriod reports whether the tenant ignores the requested period.
func (c Config) HasFixedPeriod() bool {
	return c.FixedPeriod != ""
}

// UsesPlaceholderToken reports whether the tenant still carries the built-in
// placeholder instead of a configured token.
func (c Config) UsesPlaceholderToken() bool {
	return c.DomainToken == PlaceholderToken
}

func defaults() map[string]Config {
	shared := func(key, domain, comment, fixed string) Config {
		return Config{
			Key:         key,
			BaseURL:     SolorientBaseURL,
			DomainToken: domain,
			FixedPeriod: fixed,
			StateSuffix: "NSW",
			CommentURL:  comment,
			Login:       LoginGuest,
			Flow:        FlowPaginated,
			Take:        DefaultTake,
		}
	}

	return map[string]Config{
		"cowra":            shared("cowra", "horizondap_cowra", "mailto:council@cowra.nsw.gov.au", ""),
		"liverpool_plains": shared("liverpool_plains", "horizondap_lpsc", "mailto:lpsc@lpsc.nsw.gov.au", ""),
		"uralla":           shared("uralla", "horizondap_uralla", "mailto:council@uralla.nsw.gov.au", ""),
		"walcha":           shared("walcha", "horizondap_walcha", "mailto:council@walcha.nsw.gov.au", "thismonth"),
		"weddin":           shared("weddin", "horizondap", "mailto:council@walcha.nsw.gov.au", "thismonth"),
		"maitland": {
			Key:         "maitland",
			BaseURL:     "https://myhorizon.maitland.nsw.gov.au/Horizon/",
			DomainToken: PlaceholderToken, // must come from tenants.maitland.domain_token
			FixedPeriod: "thismonth",
			StateSuffix: "NSW",
			CommentURL:  "mailto:info@maitland.nsw.gov.au",
			Login:       LoginToken,
			Flow:        FlowSinglePage,
			Take:        SinglePageTake,
		},
	}
}

// Registry resolves tenant keys to their Config. It is immutable once built.
type Registry struct {
	tenants map[string]Config
}

// NewRegistry builds a registry from the built-in table with optional
// per-tenant overrides merged on top. Overrides for keys that are not built in
// register new shared-instance tenants.
func NewRegistry(overrides map[string]Config) (*Registry, error) {
	tenants := defaults()

	for key, override := range overrides {
		base, ok := tenants[key]
		if !ok {
			base = Config{
				BaseURL: SolorientBaseURL,
				Login:   LoginGuest,
				Flow:    FlowPaginated,
				Take:    DefaultTake,
			}
		}

		if err := mergo.Merge(&base, override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge tenant %q: %w", key, err)
		}
		base.Key = key

		if base.BaseURL == "" || base.DomainToken == "" {
			return nil, fmt.Errorf("tenant %q: base_url and domain_token are required", key)
		}
		tenants[key] = base
	}

	return &Registry{tenants: tenants}, nil
}

// Default returns the registry with only the built-in tenants.
func Default() *Registry {
	return &Registry{tenants: defaults()}
}

// Resolve looks up a tenant by key.
func (r *Registry) Resolve(key string) (Config, error) {
	cfg, ok := r.tenants[key]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownTenant, key)
	}
	return cfg, nil
}

// Keys returns the registered tenant keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.tenants))
	for k := range r.tenants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
