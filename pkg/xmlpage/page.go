// Package xmlpage wraps one parsed Horizon query response.
package xmlpage

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// XPath locations in a run_query_action response.
const (
	DatasetPath = "//run_query_action_return/run_query_action_success/dataset"
	TotalPath   = DatasetPath + "/total"
	RowsPath    = DatasetPath + "/row"

	// BareRowsPath matches rows in responses without the dataset envelope.
	BareRowsPath = "//row"

	// ValueAttr carries the raw cell value on every field element.
	ValueAttr = "org_value"
)

// Page is a parsed response document.
type Page struct {
	doc *xmlquery.Node
}

// Parse parses a response body.
func Parse(body []byte) (*Page, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Total returns the dataset total. A missing or non-numeric total yields
// (0, false); callers treat that as a single page.
func (p *Page) Total() (int, bool) {
	node := xmlquery.FindOne(p.doc, TotalPath)
	if node == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(node.InnerText()))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Rows returns the row elements inside the dataset envelope, or every row
// element in the document when there is no envelope.
func (p *Page) Rows() []Row {
	nodes := xmlquery.Find(p.doc, RowsPath)
	if len(nodes) == 0 {
		nodes = xmlquery.Find(p.doc, BareRowsPath)
	}

	rows := make([]Row, len(nodes))
	for i, n := range nodes {
		rows[i] = Row{node: n}
	}
	return rows
}

// Has reports whether any row carries a child element with the given name.
func (p *Page) Has(field string) bool {
	return xmlquery.FindOne(p.doc, BareRowsPath+"/"+field) != nil
}

// Row is one row element.
type Row struct {
	node *xmlquery.Node
}

// Value returns the org_value attribute of the named child element with
// surrounding whitespace removed. Absent elements yield "".
func (r Row) Value(field string) string {
	child := r.node.SelectElement(field)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.SelectAttr(ValueAttr))
}
