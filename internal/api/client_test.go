package api

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahasiswa-app/mhs/internal/apitest"
	"github.com/mahasiswa-app/mhs/internal/types"
)

var seed = []types.Record{
	{NIM: "2201", Nama: "Budi Santoso", Jurusan: "Informatika", IPK: 3.5},
	{NIM: "2202", Nama: "Ani Lestari", Jurusan: "Sistem Informasi", IPK: 3.81},
	{NIM: "2203", Nama: "Citra Dewi", Jurusan: "Informatika", IPK: 2.9},
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(&Config{
		BaseURL: baseURL,
		Logger:  log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://example.com", "http://"} {
		_, err := New(&Config{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestEndpoint(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:8000/")
	assert.Equal(t, "http://127.0.0.1:8000/api/mahasiswa", c.Endpoint(""))
	assert.Equal(t, "http://127.0.0.1:8000/api/mahasiswa/2201", c.Endpoint("2201"))
	assert.Equal(t, "http://127.0.0.1:8000/api/mahasiswa/a%2Fb", c.Endpoint("a/b"))

	require.NoError(t, c.SetBaseURL("https://example.com"))
	assert.Equal(t, "https://example.com/api/mahasiswa", c.Endpoint(""))
}

func TestList(t *testing.T) {
	srv := apitest.New(t, seed...)
	c := newTestClient(t, srv.URL())

	records, err := c.List(context.Background(), types.Query{})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	reqs := srv.RequestsFor(http.MethodGet)
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/mahasiswa", reqs[0].Path)
	assert.Empty(t, reqs[0].RawQuery)
}

func TestListOmitsEmptyParams(t *testing.T) {
	srv := apitest.New(t, seed...)
	c := newTestClient(t, srv.URL())

	records, err := c.List(context.Background(), types.Query{SortBy: types.SortByIPK, Order: types.OrderDesc})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2202", records[0].NIM)

	req := srv.Requests()[0]
	assert.Equal(t, "ipk", req.Query.Get("sort_by"))
	assert.Equal(t, "desc", req.Query.Get("order"))
	_, hasSearch := req.Query["search"]
	assert.False(t, hasSearch, "empty search must not be sent")
	_, hasAlgo := req.Query["algo"]
	assert.False(t, hasAlgo, "empty algo must not be sent")
}

func TestListEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "null")
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).List(context.Background(), types.Query{})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListErrors(t *testing.T) {
	srv := apitest.New(t, seed...)
	c := newTestClient(t, srv.URL())

	srv.FailNext(http.StatusInternalServerError, `{"detail":"boom"}`)
	_, err := c.List(context.Background(), types.Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	detail, ok := Detail(err)
	assert.True(t, ok)
	assert.Equal(t, "boom", detail)

	srv.FailNext(http.StatusOK, `not json`)
	_, err = c.List(context.Background(), types.Query{})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).List(context.Background(), types.Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(&Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)

	_, err = c.List(context.Background(), types.Query{})
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestCreate(t *testing.T) {
	srv := apitest.New(t, seed...)
	c := newTestClient(t, srv.URL())

	rec := types.Record{NIM: "2299", Nama: "Dedi", Jurusan: "Teknik Elektro", IPK: 3.1}
	out, err := c.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, rec, *out)

	posts := srv.RequestsFor(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Equal(t, "/api/mahasiswa", posts[0].Path)
	assert.Equal(t, "application/json", posts[0].ContentType)
	assert.JSONEq(t, `{"nim":"2299","nama":"Dedi","jurusan":"Teknik Elektro","ipk":3.1}`, string(posts[0].Body))

	_, err = c.Create(context.Background(), rec)
	detail, ok := Detail(err)
	require.True(t, ok)
	assert.Equal(t, "Mahasiswa dengan NIM 2299 sudah ada.", detail)
}

func TestCreateNaNIPK(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv.URL())

	_, err := c.Create(context.Background(), types.Record{NIM: "1", Nama: "X", Jurusan: "Y", IPK: math.NaN()})
	require.Error(t, err)
	detail, ok := Detail(err)
	require.True(t, ok)
	assert.Equal(t, "Input should be a valid number", detail)

	assert.Contains(t, string(srv.Requests()[0].Body), `"ipk":null`)
}

func TestUpdateAndDelete(t *testing.T) {
	srv := apitest.New(t, seed...)
	c := newTestClient(t, srv.URL())
	ctx := context.Background()

	_, err := c.Update(ctx, "2201", types.Record{NIM: "2201", Nama: "Budi S", Jurusan: "Informatika", IPK: 3.6})
	require.NoError(t, err)
	assert.Equal(t, "Budi S", srv.Records()[0].Nama)

	puts := srv.RequestsFor(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Equal(t, "/api/mahasiswa/2201", puts[0].Path)

	require.NoError(t, c.Delete(ctx, "2201"))
	assert.Len(t, srv.Records(), 2)

	err = c.Delete(ctx, "2201")
	assert.True(t, IsNotFound(err))
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"NIM harus berupa angka"}`, "NIM harus berupa angka"},
		{`{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{`{"detail":42}`, ""},
		{`{"message":"x"}`, ""},
		{`<html>`, ""},
		{``, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDetail([]byte(tt.body)), tt.body)
	}
}
