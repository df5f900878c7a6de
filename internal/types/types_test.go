package types

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestFormatIPK(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3.5, "3.50"},
		{3.999, "4.00"},
		{3.994, "3.99"},
		{0, "0.00"},
		{4, "4.00"},
		{3.14159, "3.14"},
	}

	for _, tt := range tests {
		if got := FormatIPK(tt.in); got != tt.want {
			t.Errorf("FormatIPK(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseIPK(t *testing.T) {
	if got := ParseIPK("3.75"); got != 3.75 {
		t.Errorf("Expected 3.75, got %v", got)
	}
	if got := ParseIPK(" 2 "); got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
	for _, in := range []string{"", "abc", "3,5"} {
		if got := ParseIPK(in); !math.IsNaN(got) {
			t.Errorf("ParseIPK(%q) = %v, want NaN", in, got)
		}
	}
}

func TestIPKInput(t *testing.T) {
	if got := IPKInput(3.5); got != "3.5" {
		t.Errorf("Expected 3.5, got %q", got)
	}
	if got := IPKInput(math.NaN()); got != "" {
		t.Errorf("Expected empty string for NaN, got %q", got)
	}
}

func TestRecordJSON(t *testing.T) {
	data, err := json.Marshal(Record{NIM: "123", Nama: "Budi", Jurusan: "TI", IPK: 3.5})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"nim":"123","nama":"Budi","jurusan":"TI","ipk":3.5}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	data, err = json.Marshal(Record{NIM: "123", IPK: math.NaN()})
	if err != nil {
		t.Fatalf("Marshal with NaN failed: %v", err)
	}
	if !strings.Contains(string(data), `"ipk":null`) {
		t.Errorf("Expected NaN ipk to encode as null, got %s", data)
	}

	var r Record
	if err := json.Unmarshal([]byte(`{"nim":"9","nama":"Ani","jurusan":"SI","ipk":3.25}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.NIM != "9" || r.Nama != "Ani" || r.Jurusan != "SI" || r.IPK != 3.25 {
		t.Errorf("Unexpected record: %+v", r)
	}
}

func TestQueryValues(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"empty", Query{}, ""},
		{"search only", Query{Search: "budi", SearchMethod: SearchLinear}, "search=budi&search_method=linear"},
		{"sort only", Query{SortBy: SortByIPK, Order: OrderDesc, Algo: AlgoBubble}, "algo=bubble&order=desc&sort_by=ipk"},
		{"method without text", Query{SearchMethod: SearchBinary}, "search_method=binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Values().Encode(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQueryValidate(t *testing.T) {
	if err := (Query{SortBy: SortByNama, Order: OrderAsc, Algo: AlgoMerge, SearchMethod: SearchBinary}).Validate(); err != nil {
		t.Errorf("Expected valid query, got %v", err)
	}
	if err := (Query{}).Validate(); err != nil {
		t.Errorf("Expected empty query to be valid, got %v", err)
	}

	bad := []Query{
		{SearchMethod: "fuzzy"},
		{SortBy: "email"},
		{Order: "up"},
		{Algo: "quick"},
	}
	for _, q := range bad {
		if err := q.Validate(); err == nil {
			t.Errorf("Expected error for %+v", q)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Record{
		{NIM: "1", Jurusan: "TI", IPK: 3.0},
		{NIM: "2", Jurusan: "TI", IPK: 3.5},
		{NIM: "3", Jurusan: "SI", IPK: 3.333},
	})

	if s.Total != 3 {
		t.Errorf("Expected total 3, got %d", s.Total)
	}
	if s.AvgIPK != 3.28 {
		t.Errorf("Expected avg 3.28, got %v", s.AvgIPK)
	}
	if s.ByJurusan["TI"] != 2 || s.ByJurusan["SI"] != 1 {
		t.Errorf("Unexpected department counts: %v", s.ByJurusan)
	}
	if got := s.Departments(); len(got) != 2 || got[0] != "SI" || got[1] != "TI" {
		t.Errorf("Expected sorted departments [SI TI], got %v", got)
	}

	empty := Summarize(nil)
	if empty.Total != 0 || empty.AvgIPK != 0 {
		t.Errorf("Expected zero summary, got %+v", empty)
	}
}
