// Package apitest provides an in-memory stand-in for the student record
// server, for tests. It implements the same HTTP contract, records every
// request it receives and can be told to fail the next calls.
package apitest

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mahasiswa-app/mhs/internal/types"
)

// Request is one request as seen by the server.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	RawQuery    string
	ContentType string
	Body        []byte
}

type failure struct {
	status int
	body   string
}

// Server is a fake record server backed by a slice.
type Server struct {
	mu       sync.Mutex
	records  []types.Record
	requests []Request
	failures []failure

	engine *gin.Engine
	srv    *httptest.Server
}

// New starts a fake server seeded with records. It is closed when the test
// ends.
func New(t testing.TB, seed ...types.Record) *Server {
	t.Helper()

	s := NewHandler(seed...)
	s.srv = httptest.NewServer(s.engine)
	t.Cleanup(s.srv.Close)
	return s
}

// NewHandler builds the fake without starting a listener; mount it with
// Handler().
func NewHandler(seed ...types.Record) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		records: append([]types.Record(nil), seed...),
		engine:  gin.New(),
	}

	s.engine.Use(s.capture)
	api := s.engine.Group("/api")
	{
		api.GET("/mahasiswa", s.list)
		api.POST("/mahasiswa", s.create)
		api.PUT("/mahasiswa/:nim", s.update)
		api.DELETE("/mahasiswa/:nim", s.delete)
	}
	return s
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return s.srv.URL
}

// Handler returns the gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsFor returns the requests with the given method.
func (s *Server) RequestsFor(method string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

// Reset forgets the recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// Records returns a copy of the stored records in insertion order.
func (s *Server) Records() []types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Record(nil), s.records...)
}

// FailNext makes the next request answer with status and body instead of
// being handled. Calls queue up.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	s.failures = append(s.failures, failure{status: status, body: body})
	s.mu.Unlock()
}

func (s *Server) capture(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Query:       c.Request.URL.Query(),
		RawQuery:    c.Request.URL.RawQuery,
		ContentType: c.GetHeader("Content-Type"),
		Body:        body,
	})
	var f *failure
	if len(s.failures) > 0 {
		f = &s.failures[0]
		s.failures = s.failures[1:]
	}
	s.mu.Unlock()

	if f != nil {
		c.Data(f.status, "application/json", []byte(f.body))
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) list(c *gin.Context) {
	s.mu.Lock()
	data := append([]types.Record(nil), s.records...)
	s.mu.Unlock()

	if q := c.Query("search"); q != "" {
		data = search(data, types.SearchMethod(c.DefaultQuery("search_method", string(types.SearchLinear))), q)
	}
	if key := c.Query("sort_by"); key != "" {
		sortRecords(data, types.SortKey(key), c.DefaultQuery("order", string(types.OrderAsc)) == string(types.OrderAsc))
	}

	c.JSON(http.StatusOK, data)
}

func (s *Server) create(c *gin.Context) {
	var rec types.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Invalid JSON: " + err.Error()}}})
		return
	}
	if math.IsNaN(rec.IPK) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Input should be a valid number"}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.NIM == rec.NIM {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Mahasiswa dengan NIM " + rec.NIM + " sudah ada."})
			return
		}
	}
	s.records = append(s.records, rec)
	c.JSON(http.StatusOK, rec)
}

func (s *Server) update(c *gin.Context) {
	nim := c.Param("nim")

	var rec types.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Invalid JSON: " + err.Error()}}})
		return
	}
	if math.IsNaN(rec.IPK) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Input should be a valid number"}}})
		return
	}
	if rec.NIM != nim {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "NIM di URL dan body tidak cocok"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.NIM == nim {
			s.records[i] = rec
			c.JSON(http.StatusOK, rec)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Mahasiswa tidak ditemukan"})
}

func (s *Server) delete(c *gin.Context) {
	nim := c.Param("nim")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.NIM == nim {
			s.records = append(s.records[:i], s.records[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Data berhasil dihapus"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Mahasiswa tidak ditemukan"})
}

func search(data []types.Record, method types.SearchMethod, q string) []types.Record {
	out := []types.Record{}
	if method == types.SearchBinary {
		for _, r := range data {
			if r.NIM == q {
				out = append(out, r)
			}
		}
		return out
	}

	needle := strings.ToLower(q)
	for _, r := range data {
		if strings.Contains(strings.ToLower(r.Nama), needle) || strings.Contains(strings.ToLower(r.NIM), needle) {
			out = append(out, r)
		}
	}
	return out
}

func sortRecords(data []types.Record, key types.SortKey, asc bool) {
	less := func(a, b types.Record) bool {
		switch key {
		case types.SortByNama:
			return a.Nama < b.Nama
		case types.SortByJurusan:
			return a.Jurusan < b.Jurusan
		case types.SortByIPK:
			return a.IPK < b.IPK
		default:
			return a.NIM < b.NIM
		}
	}
	sort.SliceStable(data, func(i, j int) bool {
		if asc {
			return less(data[i], data[j])
		}
		return less(data[j], data[i])
	})
}
