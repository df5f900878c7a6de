// Package types holds the data structures shared by the mhs client: the
// student record, the list query and summary statistics.
package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one student ("mahasiswa") entry as served by the record API.
type Record struct {
	NIM     string  `json:"nim"`     // Nomor Induk Mahasiswa, primary key
	Nama    string  `json:"nama"`    // Full name
	Jurusan string  `json:"jurusan"` // Department
	IPK     float64 `json:"ipk"`     // Grade point average, 0.00-4.00 server side
}

// recordWire mirrors Record with a nullable ipk so NaN can travel as null.
type recordWire struct {
	NIM     string   `json:"nim"`
	Nama    string   `json:"nama"`
	Jurusan string   `json:"jurusan"`
	IPK     *float64 `json:"ipk"`
}

// MarshalJSON encodes a NaN or infinite IPK as null, which is what a browser
// sends for JSON.stringify(NaN). The server decides whether that is valid.
func (r Record) MarshalJSON() ([]byte, error) {
	w := recordWire{NIM: r.NIM, Nama: r.Nama, Jurusan: r.Jurusan}
	if !math.IsNaN(r.IPK) && !math.IsInf(r.IPK, 0) {
		ipk := r.IPK
		w.IPK = &ipk
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a record; a null ipk decodes as NaN.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.NIM = w.NIM
	r.Nama = w.Nama
	r.Jurusan = w.Jurusan
	if w.IPK == nil {
		r.IPK = math.NaN()
	} else {
		r.IPK = *w.IPK
	}
	return nil
}

// FormatIPK renders an IPK with exactly two decimals, rounding to nearest
// (3.5 -> "3.50", 3.999 -> "4.00").
func FormatIPK(ipk float64) string {
	return strconv.FormatFloat(ipk, 'f', 2, 64)
}

// ParseIPK parses form input into an IPK. Input that is not a number yields
// NaN rather than an error: the form does no client-side validation.
func ParseIPK(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// IPKInput renders an IPK the way it is placed back into an input field:
// shortest decimal form, empty for NaN.
func IPKInput(ipk float64) string {
	if math.IsNaN(ipk) {
		return ""
	}
	return strconv.FormatFloat(ipk, 'f', -1, 64)
}
