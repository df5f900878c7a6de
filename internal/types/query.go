package types

import (
	"fmt"
	"net/url"
)

// SearchMethod selects the server-side search algorithm.
type SearchMethod string

const (
	SearchLinear SearchMethod = "linear" // substring match on nama and nim
	SearchBinary SearchMethod = "binary" // exact nim match
)

// SortKey is the record field a list is ordered by.
type SortKey string

const (
	SortByNIM     SortKey = "nim"
	SortByNama    SortKey = "nama"
	SortByJurusan SortKey = "jurusan"
	SortByIPK     SortKey = "ipk"
)

// Order is the sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// SortAlgo selects the server-side sort algorithm.
type SortAlgo string

const (
	AlgoMerge     SortAlgo = "merge"
	AlgoBubble    SortAlgo = "bubble"
	AlgoSelection SortAlgo = "selection"
)

// SearchMethods lists the known search methods in menu order.
var SearchMethods = []SearchMethod{SearchLinear, SearchBinary}

// SortKeys lists the sortable fields in menu order.
var SortKeys = []SortKey{SortByNIM, SortByNama, SortByJurusan, SortByIPK}

// Orders lists the sort directions in menu order.
var Orders = []Order{OrderAsc, OrderDesc}

// SortAlgos lists the sort algorithms in menu order.
var SortAlgos = []SortAlgo{AlgoMerge, AlgoBubble, AlgoSelection}

// Query holds the optional list constraints forwarded to the read endpoint.
// An empty field means "no constraint of that kind"; the server applies its
// own defaults.
type Query struct {
	Search       string
	SearchMethod SearchMethod
	SortBy       SortKey
	Order        Order
	Algo         SortAlgo
}

// Values encodes the query as URL parameters. Empty fields are omitted
// entirely, never sent as "key=".
func (q Query) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("search", q.Search)
	set("search_method", string(q.SearchMethod))
	set("sort_by", string(q.SortBy))
	set("order", string(q.Order))
	set("algo", string(q.Algo))
	return v
}

// Validate checks enum fields against the known values. Empty fields are
// valid.
func (q Query) Validate() error {
	if q.SearchMethod != "" && !contains(SearchMethods, q.SearchMethod) {
		return fmt.Errorf("unknown search method %q (want one of %v)", q.SearchMethod, SearchMethods)
	}
	if q.SortBy != "" && !contains(SortKeys, q.SortBy) {
		return fmt.Errorf("unknown sort key %q (want one of %v)", q.SortBy, SortKeys)
	}
	if q.Order != "" && !contains(Orders, q.Order) {
		return fmt.Errorf("unknown order %q (want one of %v)", q.Order, Orders)
	}
	if q.Algo != "" && !contains(SortAlgos, q.Algo) {
		return fmt.Errorf("unknown sort algorithm %q (want one of %v)", q.Algo, SortAlgos)
	}
	return nil
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
