// Package controller keeps a View in step with the remote record collection.
//
// Every user action (search, sort, save, delete, edit, cancel) becomes at
// most one request against the Store. Successful reads replace the rendered
// table wholesale; successful writes are followed by an unparameterized
// re-fetch. Failures end in exactly one Alert on the View. Nothing is
// cached, retried or applied optimistically.
//
// A Controller is not safe for concurrent use; one controller serves one
// user surface and calls are expected to arrive in sequence.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/mahasiswa-app/mhs/internal/api"
	"github.com/mahasiswa-app/mhs/internal/types"
)

// User-facing texts.
const (
	MsgFetchFailed  = "Terjadi kesalahan saat mengambil data."
	MsgSaveFailed   = "Gagal menyimpan data"
	MsgDeleteFailed = "Gagal menghapus data"
	MsgCreated      = "Data berhasil ditambahkan!"
	MsgUpdated      = "Data berhasil diperbarui!"

	TitleCreate  = "Tambah Data Mahasiswa"
	TitleEdit    = "Edit Data Mahasiswa"
	ButtonCreate = "Simpan Data"
	ButtonEdit   = "Update Data"
)

var (
	// ErrReported marks an error the user has already been shown through
	// View.Alert. Callers should not print it again.
	ErrReported = errors.New("reported to user")

	// ErrUnknownRow is returned by Dispatch when no rendered row has the
	// requested identifier.
	ErrUnknownRow = errors.New("no such row")
)

// Store is the record endpoint. *api.Client implements it.
type Store interface {
	List(ctx context.Context, q types.Query) ([]types.Record, error)
	Create(ctx context.Context, rec types.Record) (*types.Record, error)
	Update(ctx context.Context, nim string, rec types.Record) (*types.Record, error)
	Delete(ctx context.Context, nim string) error
}

// ChangeKind tells OnChange listeners what happened.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Config holds optional controller settings.
type Config struct {
	// Logger receives traces of unexpected fetch failures
	// (default: discard).
	Logger *log.Logger

	// OnChange, when set, runs after every successful save or delete.
	OnChange func(kind ChangeKind, nim string)
}

// Session is the edit state of the form. When Editing is false NIM is empty.
type Session struct {
	Editing bool
	NIM     string
}

// Controller is the client sync controller for one view.
type Controller struct {
	store   Store
	view    View
	session Session
	rows    []types.Record

	logger   *log.Logger
	onChange func(kind ChangeKind, nim string)
}

// New creates a controller in create mode. The view is not touched until
// the first call.
func New(store Store, view View, config *Config) *Controller {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Controller{
		store:    store,
		view:     view,
		logger:   logger,
		onChange: config.OnChange,
	}
}

// Session returns the current edit state.
func (c *Controller) Session() Session {
	return c.session
}

// Records returns the records behind the rendered rows.
func (c *Controller) Records() []types.Record {
	return append([]types.Record(nil), c.rows...)
}

func reported(err error) error {
	return errors.Join(ErrReported, err)
}

// FetchData reads the records matching q and re-renders the table from
// them. Rows and the empty banner are cleared as soon as loading starts.
func (c *Controller) FetchData(ctx context.Context, q types.Query) error {
	c.view.SetLoading(true)
	c.view.ClearRows()
	c.view.ShowEmpty(false)
	c.rows = nil
	defer c.view.SetLoading(false)

	records, err := c.store.List(ctx, q)
	if err != nil {
		c.logger.Printf("fetch failed: %v", err)
		c.view.Alert(MsgFetchFailed)
		return reported(fmt.Errorf("fetch records: %w", err))
	}

	c.RenderTable(records)
	return nil
}

// RenderTable replaces the table content with records.
func (c *Controller) RenderTable(records []types.Record) {
	c.view.ClearRows()
	c.view.SetCount(fmt.Sprintf("%d Data", len(records)))
	c.rows = append([]types.Record(nil), records...)

	if len(records) == 0 {
		c.view.ShowEmpty(true)
		return
	}
	c.view.ShowEmpty(false)

	for _, r := range records {
		c.view.AppendRow(RowOf(r))
	}
}

// Save submits the form: PUT to the record being edited, otherwise POST a
// new one. The IPK field is parsed as a float; bad input is sent as NaN.
func (c *Controller) Save(ctx context.Context) error {
	f := c.view.FormValues()
	rec := types.Record{
		NIM:     f.NIM,
		Nama:    f.Nama,
		Jurusan: f.Jurusan,
		IPK:     types.ParseIPK(f.IPK),
	}

	wasEditing := c.session.Editing
	target := c.session.NIM

	var err error
	if wasEditing {
		_, err = c.store.Update(ctx, target, rec)
	} else {
		_, err = c.store.Create(ctx, rec)
	}
	if err != nil {
		msg := MsgSaveFailed
		if detail, ok := api.Detail(err); ok {
			msg = detail
		}
		c.view.Alert(msg)
		return reported(fmt.Errorf("save record: %w", err))
	}

	kind, msg := ChangeCreated, MsgCreated
	if wasEditing {
		kind, msg = ChangeUpdated, MsgUpdated
	} else {
		target = rec.NIM
	}

	c.ResetForm()
	if c.onChange != nil {
		c.onChange(kind, target)
	}
	_ = c.FetchData(ctx, types.Query{})
	c.view.Alert(msg)
	return nil
}

// ConfirmDeleteMessage is the question asked before deleting nim.
func ConfirmDeleteMessage(nim string) string {
	return fmt.Sprintf("Apakah Anda yakin ingin menghapus data mahasiswa dengan NIM %s?", nim)
}

// Delete removes the record after the user confirms. Declining sends
// nothing.
func (c *Controller) Delete(ctx context.Context, nim string) error {
	if !c.view.Confirm(ConfirmDeleteMessage(nim)) {
		return nil
	}

	if err := c.store.Delete(ctx, nim); err != nil {
		c.view.Alert(MsgDeleteFailed)
		return reported(fmt.Errorf("delete record %s: %w", nim, err))
	}

	if c.onChange != nil {
		c.onChange(ChangeDeleted, nim)
	}
	return c.FetchData(ctx, types.Query{})
}

// Edit switches the form to edit mode for rec.
func (c *Controller) Edit(rec types.Record) {
	c.session = Session{Editing: true, NIM: rec.NIM}

	c.view.SetFormValues(Form{
		NIM:     rec.NIM,
		Nama:    rec.Nama,
		Jurusan: rec.Jurusan,
		IPK:     types.IPKInput(rec.IPK),
	})
	c.view.SetIDLocked(true)
	c.view.SetFormMode(TitleEdit, ButtonEdit)
	c.view.ShowCancel(true)
	c.view.FocusForm()
}

// ResetForm returns the form to blank create mode.
func (c *Controller) ResetForm() {
	c.view.SetFormValues(Form{})
	c.session = Session{}
	c.view.SetIDLocked(false)
	c.view.SetFormMode(TitleCreate, ButtonCreate)
	c.view.ShowCancel(false)
}

// Search fetches with the current search text and method. The sort
// selection is not carried over.
func (c *Controller) Search(ctx context.Context) error {
	ctl := c.view.Controls()
	return c.FetchData(ctx, types.Query{
		Search:       ctl.Search,
		SearchMethod: ctl.SearchMethod,
	})
}

// Sort fetches with the current sort selection, on top of the active search
// when the search text is non-empty.
func (c *Controller) Sort(ctx context.Context) error {
	ctl := c.view.Controls()
	q := types.Query{
		SortBy: ctl.SortBy,
		Order:  ctl.Order,
		Algo:   ctl.Algo,
	}
	if ctl.Search != "" {
		q.Search = ctl.Search
		q.SearchMethod = ctl.SearchMethod
	}
	return c.FetchData(ctx, q)
}
