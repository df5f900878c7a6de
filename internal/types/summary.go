package types

import (
	"math"
	"sort"
)

// Summary contains aggregate figures over a record list.
type Summary struct {
	Total     int            `json:"total" yaml:"total"`
	AvgIPK    float64        `json:"avg_ipk" yaml:"avg_ipk"`
	ByJurusan map[string]int `json:"by_jurusan" yaml:"by_jurusan"`
}

// Summarize computes totals, the mean IPK rounded to two decimals and the
// per-department counts. NaN IPKs are left out of the mean.
func Summarize(records []Record) Summary {
	s := Summary{
		Total:     len(records),
		ByJurusan: make(map[string]int),
	}

	var sum float64
	var n int
	for _, r := range records {
		s.ByJurusan[r.Jurusan]++
		if math.IsNaN(r.IPK) {
			continue
		}
		sum += r.IPK
		n++
	}
	if n > 0 {
		s.AvgIPK = math.Round(sum/float64(n)*100) / 100
	}
	return s
}

// Departments returns the department names in alphabetical order.
func (s Summary) Departments() []string {
	names := make([]string, 0, len(s.ByJurusan))
	for name := range s.ByJurusan {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
