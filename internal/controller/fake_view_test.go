package controller

// fakeView records what the controller does to it.
type fakeView struct {
	loading   bool
	rows      []Row
	empty     bool
	count     string
	form      Form
	idLocked  bool
	title     string
	button    string
	cancel    bool
	focused   int
	controls  Controls
	alerts    []string
	confirms  []string
	confirmOK bool

	// loadingHistory has one entry per SetLoading call.
	loadingHistory []bool
}

func (v *fakeView) SetLoading(on bool) {
	v.loading = on
	v.loadingHistory = append(v.loadingHistory, on)
}

func (v *fakeView) ClearRows() { v.rows = nil }
func (v *fakeView) AppendRow(row Row) { v.rows = append(v.rows, row) }
func (v *fakeView) ShowEmpty(on bool) { v.empty = on }
func (v *fakeView) SetCount(label string) { v.count = label }
func (v *fakeView) FormValues() Form { return v.form }
func (v *fakeView) SetFormValues(f Form) { v.form = f }
func (v *fakeView) SetIDLocked(lock bool) { v.idLocked = lock }
func (v *fakeView) ShowCancel(on bool) { v.cancel = on }
func (v *fakeView) FocusForm() { v.focused++ }
func (v *fakeView) Controls() Controls { return v.controls }
func (v *fakeView) Alert(msg string) { v.alerts = append(v.alerts, msg) }

func (v *fakeView) SetFormMode(title, button string) {
	v.title = title
	v.button = button
}

func (v *fakeView) Confirm(msg string) bool {
	v.confirms = append(v.confirms, msg)
	return v.confirmOK
}
