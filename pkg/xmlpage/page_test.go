package xmlpage

import "testing"

const enveloped = `<?xml version="1.0" encoding="utf-8"?>
<run_query_action_return>
  <run_query_action_success>
    <dataset>
      <total>612</total>
      <row>
        <AccountNumber org_value=" DA 10/2023 "/>
        <Property org_value="1 Kendal St"/>
        <Lodged org_value="2023-03-15T00:00:00"/>
      </row>
      <row>
        <AccountNumber org_value=""/>
        <Property org_value="2 Kendal St"/>
      </row>
    </dataset>
  </run_query_action_success>
</run_query_action_return>`

const bare = `<rows>
  <row><EntryAccount org_value="DA/2023/1"/><PropertyDescription org_value="12 Main St, Smalltown"/></row>
</rows>`

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("<unclosed>")); err == nil {
		t.Error("expected error for malformed xml")
	}
}

func TestPage_Total(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   int
		wantOK bool
	}{
		{"present", enveloped, 612, true},
		{"missing", bare, 0, false},
		{"garbled", `<run_query_action_return><run_query_action_success><dataset><total>lots</total></dataset></run_query_action_success></run_query_action_return>`, 0, false},
		{"padded", `<run_query_action_return><run_query_action_success><dataset><total> 7 </total></dataset></run_query_action_success></run_query_action_return>`, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.body))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, ok := p.Total()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Total() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPage_RowsEnveloped(t *testing.T) {
	p, err := Parse([]byte(enveloped))
	if err != nil {
		t.Fatal(err)
	}

	rows := p.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(Rows()) = %d, want 2", len(rows))
	}
	if got := rows[0].Value("AccountNumber"); got != "DA 10/2023" {
		t.Errorf("AccountNumber = %q, want trimmed value", got)
	}
	if got := rows[1].Value("AccountNumber"); got != "" {
		t.Errorf("empty AccountNumber = %q", got)
	}
	if got := rows[1].Value("Lodged"); got != "" {
		t.Errorf("absent Lodged = %q", got)
	}
	if !p.Has("AccountNumber") || p.Has("EntryAccount") {
		t.Error("Has() mismatch for enveloped page")
	}
}

func TestPage_RowsBare(t *testing.T) {
	p, err := Parse([]byte(bare))
	if err != nil {
		t.Fatal(err)
	}

	rows := p.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(Rows()) = %d, want 1", len(rows))
	}
	if got := rows[0].Value("PropertyDescription"); got != "12 Main St, Smalltown" {
		t.Errorf("PropertyDescription = %q", got)
	}
}
