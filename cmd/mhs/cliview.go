package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/ui"
)

// cliView adapts the controller to one-shot commands: the form is filled
// from flags, alerts are printed, and the table is not drawn.
type cliView struct {
	out, errOut io.Writer
	form        controller.Form
	assumeYes   bool
	prompter    ui.Prompter
}

func newCLIView(out, errOut io.Writer, assumeYes bool) *cliView {
	v := &cliView{out: out, errOut: errOut, assumeYes: assumeYes}
	if !assumeYes && ui.IsInteractive(os.Stdin) {
		v.prompter = ui.NewHuhPrompter(os.Stdin, errOut, false, cfg.NoColor)
	}
	return v
}

var _ controller.View = (*cliView)(nil)

func (v *cliView) SetLoading(bool) {}
func (v *cliView) ClearRows() {}
func (v *cliView) AppendRow(controller.Row) {}
func (v *cliView) ShowEmpty(bool) {}
func (v *cliView) SetCount(string) {}
func (v *cliView) SetIDLocked(bool) {}
func (v *cliView) SetFormMode(string, string) {}
func (v *cliView) ShowCancel(bool) {}
func (v *cliView) FocusForm() {}
func (v *cliView) Controls() controller.Controls { return controller.Controls{} }

func (v *cliView) FormValues() controller.Form { return v.form }
func (v *cliView) SetFormValues(f controller.Form) { v.form = f }

// Alert prints success messages to stdout and everything else to stderr.
func (v *cliView) Alert(msg string) {
	w := v.errOut
	if msg == controller.MsgCreated || msg == controller.MsgUpdated {
		w = v.out
	}
	fmt.Fprintln(w, ui.Sanitize(msg))
}

// Confirm is answered by --yes, or by a prompt on a terminal. Anything else
// declines.
func (v *cliView) Confirm(msg string) bool {
	if v.assumeYes {
		return true
	}
	if v.prompter == nil {
		fmt.Fprintln(v.errOut, "Konfirmasi diperlukan; jalankan ulang dengan --yes.")
		return false
	}
	ok, err := v.prompter.Confirm(msg)
	return err == nil && ok
}
