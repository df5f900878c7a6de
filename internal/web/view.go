package web

import (
	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/types"
)

// pageView is the page state of one session. Alerts queue up until the next
// render; the delete confirmation answer arrives with the row post.
type pageView struct {
	loading  bool
	rows     []controller.Row
	empty    bool
	count    string
	form     controller.Form
	locked   bool
	title    string
	button   string
	cancel   bool
	focus    bool
	controls controller.Controls
	alerts   []string
	answer   bool
}

func newPageView() *pageView {
	return &pageView{
		count:  "0 Data",
		title:  controller.TitleCreate,
		button: controller.ButtonCreate,
		controls: controller.Controls{
			SearchMethod: types.SearchLinear,
			SortBy:       types.SortByNIM,
			Order:        types.OrderAsc,
			Algo:         types.AlgoMerge,
		},
	}
}

var _ controller.View = (*pageView)(nil)

func (v *pageView) SetLoading(on bool) { v.loading = on }
func (v *pageView) ClearRows() { v.rows = nil }
func (v *pageView) AppendRow(row controller.Row) { v.rows = append(v.rows, row) }
func (v *pageView) ShowEmpty(on bool) { v.empty = on }
func (v *pageView) SetCount(label string) { v.count = label }
func (v *pageView) FormValues() controller.Form { return v.form }
func (v *pageView) SetFormValues(f controller.Form) { v.form = f }
func (v *pageView) SetIDLocked(locked bool) { v.locked = locked }
func (v *pageView) ShowCancel(on bool) { v.cancel = on }
func (v *pageView) FocusForm() { v.focus = true }
func (v *pageView) Controls() controller.Controls { return v.controls }
func (v *pageView) Alert(msg string) { v.alerts = append(v.alerts, msg) }

func (v *pageView) SetFormMode(title, button string) {
	v.title = title
	v.button = button
}

// Confirm consumes the answer posted with the current request.
func (v *pageView) Confirm(string) bool {
	ok := v.answer
	v.answer = false
	return ok
}

// pageData is what the template sees.
type pageData struct {
	Count     string
	Rows      []controller.Row
	Empty     bool
	Loading   bool
	Form      controller.Form
	Locked    bool
	FormTitle string
	Button    string
	Cancel    bool
	Focus     bool
	Controls  controller.Controls
	Alerts    []string
	Origin    string

	SearchMethods []types.SearchMethod
	SortKeys      []types.SortKey
	Orders        []types.Order
	Algos         []types.SortAlgo
}

// snapshot builds the template data and drains the one-shot state.
func (v *pageView) snapshot(origin string) pageData {
	d := pageData{
		Count:         v.count,
		Rows:          v.rows,
		Empty:         v.empty,
		Loading:       v.loading,
		Form:          v.form,
		Locked:        v.locked,
		FormTitle:     v.title,
		Button:        v.button,
		Cancel:        v.cancel,
		Focus:         v.focus,
		Controls:      v.controls,
		Alerts:        v.alerts,
		Origin:        origin,
		SearchMethods: types.SearchMethods,
		SortKeys:      types.SortKeys,
		Orders:        types.Orders,
		Algos:         types.SortAlgos,
	}
	v.alerts = nil
	v.focus = false
	return d
}
