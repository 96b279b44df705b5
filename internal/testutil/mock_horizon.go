// Package testutil provides a mock Horizon server for tests.
package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// SessionCookie is the cookie the mock sets on login and requires on queries.
const SessionCookie = "JSESSIONID"

// MockHorizon is a configurable mock Horizon server. Rows are served in
// pages according to the start and pageSize query parameters.
type MockHorizon struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	rows     []string
	total    string
	bareRows bool
	failAt   map[int]int

	// Tracking
	LoginCount  int
	QueryCount  int
	QueryStarts []int
	LastQuery   url.Values
}

// NewMockHorizon creates a new mock Horizon server with no rows.
func NewMockHorizon() *MockHorizon {
	mock := &MockHorizon{
		handlers: make(map[string]http.HandlerFunc),
		failAt:   make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/Horizon/logonGuest.aw":
			mock.login(w, r, "domain")
		case "/Horizon/logonOp.aw":
			mock.login(w, r, "e")
		case "/Horizon/urlRequest.aw":
			mock.query(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return mock
}

// URL returns the tenant base URL of the mock, ending in "/Horizon/".
func (m *MockHorizon) URL() string {
	return m.server.URL + "/Horizon/"
}

// Close shuts down the mock server.
func (m *MockHorizon) Close() {
	m.server.Close()
}

// SetRows sets the rows served by urlRequest.aw and the reported total.
func (m *MockHorizon) SetRows(rows ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
	m.total = strconv.Itoa(len(rows))
}

// SetTotal overrides the reported dataset total. An empty string omits the
// total element.
func (m *MockHorizon) SetTotal(total string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

// SetBareRows serves rows without the run_query_action envelope.
func (m *MockHorizon) SetBareRows(bare bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bareRows = bare
}

// FailAt makes queries with the given start offset answer with status.
func (m *MockHorizon) FailAt(start, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt[start] = status
}

// SetHandler sets a custom handler for a specific path.
func (m *MockHorizon) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// GetQueryCount returns the number of urlRequest.aw calls.
func (m *MockHorizon) GetQueryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.QueryCount
}

// GetLoginCount returns the number of login calls.
func (m *MockHorizon) GetLoginCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LoginCount
}

// GetQueryStarts returns the start offsets of every query, in order.
func (m *MockHorizon) GetQueryStarts() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.QueryStarts...)
}

// GetLastQuery returns the parameters of the most recent query.
func (m *MockHorizon) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

func (m *MockHorizon) login(w http.ResponseWriter, r *http.Request, param string) {
	token := r.URL.Query().Get(param)
	if token == "" {
		http.Error(w, "missing "+param, http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.LoginCount++
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "guest-" + token, Path: "/"})
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte("<html><body>Welcome</body></html>"))
}

func (m *MockHorizon) query(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(SessionCookie); err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	start, _ := strconv.Atoi(q.Get("start"))
	pageSize, err := strconv.Atoi(q.Get("pageSize"))
	if err != nil || pageSize <= 0 {
		http.Error(w, "bad pageSize", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.QueryCount++
	m.QueryStarts = append(m.QueryStarts, start)
	m.LastQuery = q
	rows, total, bare := m.rows, m.total, m.bareRows
	failStatus, fail := m.failAt[start]
	m.mu.Unlock()

	if fail {
		http.Error(w, "query failed", failStatus)
		return
	}

	var page []string
	if start < len(rows) {
		end := min(start+pageSize, len(rows))
		page = rows[start:end]
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if bare {
		fmt.Fprintf(w, "<rows>%s</rows>", strings.Join(page, ""))
		return
	}

	totalElem := ""
	if total != "" {
		totalElem = "<total>" + total + "</total>"
	}
	fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?>`+
		`<run_query_action_return><run_query_action_success><dataset>%s%s</dataset>`+
		`</run_query_action_success></run_query_action_return>`, totalElem, strings.Join(page, ""))
}

func field(name, value string) string {
	return fmt.Sprintf(`<%s org_value="%s"/>`, name, html.EscapeString(value))
}

// VariantARow renders a shared-instance row.
func VariantARow(reference, address, description, lodged string) string {
	return "<row>" +
		field("AccountNumber", reference) +
		field("Property", address) +
		field("Description", description) +
		field("Lodged", lodged) +
		"</row>"
}

// VariantBRow renders a standalone-instance row.
func VariantBRow(reference, address, details, lodged string) string {
	return "<row>" +
		field("EntryAccount", reference) +
		field("PropertyDescription", address) +
		field("Details", details) +
		field("Lodged", lodged) +
		"</row>"
}
