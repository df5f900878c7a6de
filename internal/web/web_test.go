package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahasiswa-app/mhs/internal/api"
	"github.com/mahasiswa-app/mhs/internal/apitest"
	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/export"
	"github.com/mahasiswa-app/mhs/internal/types"
)

var seed = []types.Record{
	{NIM: "A1", Nama: "Ani", Jurusan: "TI", IPK: 3.5},
	{NIM: "B2", Nama: "Budi", Jurusan: "SI", IPK: 3.1},
}

type fixture struct {
	server  *Server
	backend *apitest.Server
	http    *httptest.Server
	client  *http.Client
}

func newFixture(t *testing.T, records ...types.Record) *fixture {
	t.Helper()

	backend := apitest.New(t, records...)
	store, err := api.New(&api.Config{BaseURL: backend.URL(), Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)

	server := NewServer(&Config{Port: 0, Store: store, Logger: log.New(io.Discard, "", 0)})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &fixture{server: server, backend: backend, http: ts, client: &http.Client{Jar: jar}}
}

func (f *fixture) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := f.client.Get(f.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func (f *fixture) post(t *testing.T, path string, form url.Values) string {
	t.Helper()
	resp, err := f.client.PostForm(f.http.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestIndexLoadsOncePerSession(t *testing.T) {
	f := newFixture(t, seed...)

	page := f.get(t, "/")
	assert.Contains(t, page, "2 Data")
	assert.Contains(t, page, `data-nim="A1"`)
	assert.Contains(t, page, "3.50")
	assert.NotContains(t, page, `id="empty"`)
	assert.Len(t, f.backend.RequestsFor(http.MethodGet), 1)

	f.get(t, "/")
	assert.Len(t, f.backend.RequestsFor(http.MethodGet), 1)

	f.get(t, "/?refresh=1")
	assert.Len(t, f.backend.RequestsFor(http.MethodGet), 2)
}

func TestIndexEmptyAndFetchFailure(t *testing.T) {
	f := newFixture(t)
	page := f.get(t, "/")
	assert.Contains(t, page, "0 Data")
	assert.Contains(t, page, `id="empty"`)

	f.backend.FailNext(http.StatusInternalServerError, `{"detail":"boom"}`)
	page = f.get(t, "/?refresh=1")
	assert.Contains(t, page, "<li>"+controller.MsgFetchFailed+"</li>")

	// Alerts are shown once.
	page = f.get(t, "/")
	assert.NotContains(t, page, controller.MsgFetchFailed)
}

func TestFieldsAreEscaped(t *testing.T) {
	f := newFixture(t, types.Record{NIM: "X1", Nama: "<script>alert(1)</script>", Jurusan: "TI", IPK: 3})

	page := f.get(t, "/")
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;alert(1)&lt;/script&gt;")
}

func TestSaveCreate(t *testing.T) {
	f := newFixture(t, seed...)
	f.get(t, "/")

	page := f.post(t, "/save", url.Values{"nim": {"C3"}, "nama": {"Citra"}, "jurusan": {"TI"}, "ipk": {"3.9"}})

	require.Len(t, f.backend.RequestsFor(http.MethodPost), 1)
	assert.Len(t, f.backend.Records(), 3)
	assert.Contains(t, page, "<li>"+controller.MsgCreated+"</li>")
	assert.Contains(t, page, "3 Data")
	assert.Contains(t, page, controller.ButtonCreate)
}

func TestSaveFailureKeepsForm(t *testing.T) {
	f := newFixture(t, seed...)
	f.get(t, "/")

	page := f.post(t, "/save", url.Values{"nim": {"A1"}, "nama": {"Dup"}, "jurusan": {"TI"}, "ipk": {"3"}})

	assert.Contains(t, page, "Mahasiswa dengan NIM A1 sudah ada.")
	assert.Contains(t, page, `value="Dup"`)
}

func TestEmptyIPKIsLeftToServer(t *testing.T) {
	f := newFixture(t, seed...)
	page := f.get(t, "/")
	assert.NotContains(t, page, " required")

	page = f.post(t, "/save", url.Values{"nim": {"C3"}, "nama": {"Citra"}, "jurusan": {"TI"}, "ipk": {""}})

	posts := f.backend.RequestsFor(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Contains(t, string(posts[0].Body), `"ipk":null`)
	assert.Contains(t, page, "Input should be a valid number")
	assert.Contains(t, page, `value="Citra"`)
}

func TestEditThenUpdate(t *testing.T) {
	f := newFixture(t, seed...)
	f.get(t, "/")

	page := f.post(t, "/rows", url.Values{"action": {"edit"}, "nim": {"A1"}})
	assert.Contains(t, page, controller.TitleEdit)
	assert.Contains(t, page, controller.ButtonEdit)
	assert.Contains(t, page, `value="A1" readonly`)
	assert.Contains(t, page, `id="cancel"`)
	assert.Contains(t, page, "autofocus")

	page = f.post(t, "/save", url.Values{"nim": {"A1"}, "nama": {"Ani Lestari"}, "jurusan": {"TI"}, "ipk": {"3.6"}})

	puts := f.backend.RequestsFor(http.MethodPut)
	require.Len(t, puts, 1)
	assert.True(t, strings.HasSuffix(puts[0].Path, "/A1"))
	assert.Contains(t, page, controller.MsgUpdated)
	assert.Contains(t, page, controller.TitleCreate)
	assert.NotContains(t, page, `id="cancel"`)
}

func TestCancelEdit(t *testing.T) {
	f := newFixture(t, seed...)
	f.get(t, "/")
	f.post(t, "/rows", url.Values{"action": {"edit"}, "nim": {"B2"}})

	page := f.post(t, "/cancel", nil)
	assert.Contains(t, page, controller.TitleCreate)
	assert.NotContains(t, page, " readonly>")
	assert.Empty(t, f.backend.RequestsFor(http.MethodPut))
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t, seed...)
	page := f.get(t, "/")
	assert.Contains(t, page, `data-confirm="Apakah Anda yakin ingin menghapus data mahasiswa dengan NIM A1?"`)

	f.post(t, "/rows", url.Values{"action": {"delete"}, "nim": {"A1"}, "confirmed": {"false"}})
	assert.Empty(t, f.backend.RequestsFor(http.MethodDelete))

	page = f.post(t, "/rows", url.Values{"action": {"delete"}, "nim": {"A1"}, "confirmed": {"true"}})
	assert.Len(t, f.backend.RequestsFor(http.MethodDelete), 1)
	assert.Contains(t, page, "1 Data")
}

func TestUnknownRowAction(t *testing.T) {
	f := newFixture(t, seed...)
	f.get(t, "/")

	page := f.post(t, "/rows", url.Values{"action": {"edit"}, "nim": {"ZZ"}})
	assert.Contains(t, page, "no such row")
}

func TestSearchAndSort(t *testing.T) {
	f := newFixture(t, seed...)
	f.get(t, "/")

	page := f.post(t, "/search", url.Values{"search": {"bud"}, "search_method": {"linear"}, "sort_by": {"ipk"}})
	assert.Contains(t, page, "1 Data")
	gets := f.backend.RequestsFor(http.MethodGet)
	last := gets[len(gets)-1]
	assert.Equal(t, "bud", last.Query.Get("search"))
	assert.Empty(t, last.Query.Get("sort_by"))

	f.post(t, "/sort", url.Values{"search": {"bud"}, "search_method": {"linear"}, "sort_by": {"ipk"}, "order": {"desc"}, "algo": {"bogus"}})
	gets = f.backend.RequestsFor(http.MethodGet)
	last = gets[len(gets)-1]
	assert.Equal(t, "bud", last.Query.Get("search"))
	assert.Equal(t, "ipk", last.Query.Get("sort_by"))
	assert.Equal(t, "desc", last.Query.Get("order"))
	assert.Equal(t, "merge", last.Query.Get("algo"))
}

func TestExport(t *testing.T) {
	f := newFixture(t, seed...)
	f.get(t, "/")

	resp, err := f.client.Get(f.http.URL + "/export.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "mahasiswa.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	records, err := export.Read(bytes.NewReader(data), export.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, seed, records)
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	f.get(t, "/")

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(f.get(t, "/health")), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(1), health["sessions"])
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(&Config{Port: 0, Logger: log.New(io.Discard, "", 0)})

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if addr := server.GetAddr(); strings.HasSuffix(addr, ":0") {
		t.Fatalf("Expected a bound port, got %s", addr)
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("Failed to stop server: %v", err)
	}
}

func TestChangeIsBroadcast(t *testing.T) {
	backend := apitest.New(t, seed...)
	store, err := api.New(&api.Config{BaseURL: backend.URL(), Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)

	server := NewServer(&Config{Port: 0, Store: store, Logger: log.New(io.Discard, "", 0)})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer server.Stop()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+server.GetAddr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg Message
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeHello, msg.Type)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}
	resp, err := client.PostForm(server.URL()+"save", url.Values{"nim": {"C3"}, "nama": {"Citra"}, "jurusan": {"TI"}, "ipk": {"3.9"}})
	require.NoError(t, err)
	resp.Body.Close()

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeRecordsChanged, msg.Type)

	var change ChangeData
	require.NoError(t, json.Unmarshal(msg.Data, &change))
	assert.Equal(t, controller.ChangeCreated, change.Kind)
	assert.Equal(t, "C3", change.NIM)
	assert.NotEmpty(t, change.Origin)
}
