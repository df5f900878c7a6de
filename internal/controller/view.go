package controller

import "github.com/mahasiswa-app/mhs/internal/types"

// Row is one rendered table row. Display fields are already formatted; NIM
// identifies the row for edit/delete actions.
type Row struct {
	NIM     string
	Nama    string
	Jurusan string
	IPK     string
}

// RowOf formats rec for display.
func RowOf(rec types.Record) Row {
	return Row{
		NIM:     rec.NIM,
		Nama:    rec.Nama,
		Jurusan: rec.Jurusan,
		IPK:     types.FormatIPK(rec.IPK),
	}
}

// Form holds the raw text of the record form fields.
type Form struct {
	NIM     string
	Nama    string
	Jurusan string
	IPK     string
}

// Controls holds the current values of the search and sort controls.
type Controls struct {
	Search       string
	SearchMethod types.SearchMethod
	SortBy       types.SortKey
	Order        types.Order
	Algo         types.SortAlgo
}

// TableView is the record table with its count label, empty banner and
// loading indicator.
type TableView interface {
	SetLoading(on bool)
	ClearRows()
	AppendRow(row Row)
	ShowEmpty(on bool)
	SetCount(label string)
}

// FormView is the create/edit form.
type FormView interface {
	FormValues() Form
	SetFormValues(f Form)

	// SetIDLocked makes the identifier field read-only and marks it as such.
	SetIDLocked(locked bool)

	// SetFormMode sets the form header and submit button text.
	SetFormMode(title, button string)

	ShowCancel(on bool)

	// FocusForm brings the form into view.
	FocusForm()
}

// ControlsView exposes the search and sort inputs.
type ControlsView interface {
	Controls() Controls
}

// Notifier shows blocking messages and asks yes/no questions.
type Notifier interface {
	Alert(msg string)
	Confirm(msg string) bool
}

// View is everything the controller drives.
type View interface {
	TableView
	FormView
	ControlsView
	Notifier
}
