package ui

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/types"
)

// ErrAborted is returned by a Prompter when the user backs out of a prompt.
var ErrAborted = huh.ErrUserAborted

// MenuItem is one entry of the action menu.
type MenuItem struct {
	Key   string
	Label string
}

// Prompter collects input from the user.
type Prompter interface {
	Menu(title string, items []MenuItem) (string, error)
	RecordForm(title string, f *controller.Form, locked bool) error
	SearchForm(c *controller.Controls) error
	SortForm(c *controller.Controls) error
	PickRow(title string, rows []controller.Row) (string, error)
	Confirm(msg string) (bool, error)
}

// HuhPrompter implements Prompter with huh forms.
type HuhPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
	theme      *huh.Theme
}

// NewHuhPrompter creates a prompter. Accessible mode replaces the full-screen
// widgets with plain line prompts, which is what a pipe or a screen reader
// needs.
func NewHuhPrompter(in io.Reader, out io.Writer, accessible, noColor bool) *HuhPrompter {
	theme := huh.ThemeCharm()
	if noColor {
		theme = huh.ThemeBase()
	}
	return &HuhPrompter{in: in, out: out, accessible: accessible, theme: theme}
}

func (p *HuhPrompter) run(groups ...*huh.Group) error {
	return huh.NewForm(groups...).
		WithAccessible(p.accessible).
		WithInput(p.in).
		WithOutput(p.out).
		WithTheme(p.theme).
		Run()
}

// Menu asks for one of items and returns its key.
func (p *HuhPrompter) Menu(title string, items []MenuItem) (string, error) {
	opts := make([]huh.Option[string], len(items))
	for i, it := range items {
		opts[i] = huh.NewOption(it.Label, it.Key)
	}

	var key string
	err := p.run(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(opts...).Value(&key),
	))
	return key, err
}

// RecordForm edits f in place. A locked NIM is shown but cannot be changed.
func (p *HuhPrompter) RecordForm(title string, f *controller.Form, locked bool) error {
	var nim huh.Field
	if locked {
		nim = huh.NewNote().Title("NIM").Description(Sanitize(f.NIM))
	} else {
		nim = huh.NewInput().Title("NIM").Value(&f.NIM).Validate(required("NIM"))
	}

	return p.run(huh.NewGroup(
		nim,
		huh.NewInput().Title("Nama").Value(&f.Nama).Validate(required("Nama")),
		huh.NewInput().Title("Jurusan").Value(&f.Jurusan).Validate(required("Jurusan")),
		huh.NewInput().Title("IPK").Value(&f.IPK).Validate(required("IPK")),
	).Title(title))
}

// SearchForm edits the search text and method.
func (p *HuhPrompter) SearchForm(c *controller.Controls) error {
	return p.run(huh.NewGroup(
		huh.NewInput().Title("Cari (NIM atau nama)").Value(&c.Search),
		huh.NewSelect[types.SearchMethod]().
			Title("Metode pencarian").
			Options(huh.NewOptions(types.SearchMethods...)...).
			Value(&c.SearchMethod),
	))
}

// SortForm edits the sort key, order and algorithm.
func (p *HuhPrompter) SortForm(c *controller.Controls) error {
	return p.run(huh.NewGroup(
		huh.NewSelect[types.SortKey]().
			Title("Urutkan berdasarkan").
			Options(huh.NewOptions(types.SortKeys...)...).
			Value(&c.SortBy),
		huh.NewSelect[types.Order]().
			Title("Urutan").
			Options(huh.NewOptions(types.Orders...)...).
			Value(&c.Order),
		huh.NewSelect[types.SortAlgo]().
			Title("Algoritma").
			Options(huh.NewOptions(types.SortAlgos...)...).
			Value(&c.Algo),
	))
}

// PickRow asks for one of the displayed rows and returns its NIM.
func (p *HuhPrompter) PickRow(title string, rows []controller.Row) (string, error) {
	if len(rows) == 0 {
		return "", errors.New("no rows to choose from")
	}
	opts := make([]huh.Option[string], len(rows))
	for i, r := range rows {
		label := Sanitize(r.NIM) + "  " + Sanitize(r.Nama) + " (" + Sanitize(r.Jurusan) + ")"
		opts[i] = huh.NewOption(label, r.NIM)
	}

	var nim string
	err := p.run(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(opts...).Value(&nim),
	))
	return nim, err
}

// Confirm asks a yes/no question.
func (p *HuhPrompter) Confirm(msg string) (bool, error) {
	var ok bool
	err := p.run(huh.NewGroup(
		huh.NewConfirm().Title(Sanitize(msg)).Affirmative("Ya").Negative("Tidak").Value(&ok),
	))
	return ok, err
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " wajib diisi")
		}
		return nil
	}
}
