// Package ui is the terminal front end: a controller.View that keeps the
// screen state and renders it with lipgloss, plus huh-based prompts and the
// interactive loop.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/types"
)

// Texts shown on screen.
const (
	AppTitle    = "Data Mahasiswa"
	EmptyBanner = "Belum ada data mahasiswa."
	LoadingText = "Memuat data..."
	LockedMark  = "(terkunci)"
	CancelText  = "Batal"
)

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Styles is the lipgloss style set of a screen.
type Styles struct {
	Title   lipgloss.Style
	Count   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Number  lipgloss.Style
	Border  lipgloss.Style
	Muted   lipgloss.Style
	Panel   lipgloss.Style
	Alert   lipgloss.Style
	Success lipgloss.Style
}

// NewStyles builds styles bound to a renderer for out. noColor (or the
// NO_COLOR environment variable) forces plain ASCII output.
func NewStyles(out io.Writer, noColor bool) Styles {
	r := lipgloss.NewRenderer(out)
	if noColor || termenv.EnvNoColor() {
		r.SetColorProfile(termenv.Ascii)
	}

	accent := lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	muted := lipgloss.AdaptiveColor{Light: "#64748b", Dark: "#94a3b8"}

	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(accent),
		Count:   r.NewStyle().Foreground(muted),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Number:  r.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		Border:  r.NewStyle().Foreground(muted),
		Muted:   r.NewStyle().Foreground(muted).Italic(true),
		Panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Alert:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc2626")),
		Success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#16a34a")),
	}
}

// Screen is the terminal View. Alerts are printed as they happen; the rest
// of the state is drawn by Render.
type Screen struct {
	out      io.Writer
	styles   Styles
	prompter Prompter

	loading  bool
	rows     []controller.Row
	empty    bool
	count    string
	form     controller.Form
	idLocked bool
	title    string
	button   string
	cancel   bool
	focused  bool
	controls controller.Controls
}

// NewScreen creates a screen writing to out. prompter answers Confirm.
func NewScreen(out io.Writer, styles Styles, prompter Prompter) *Screen {
	return &Screen{
		out:      out,
		styles:   styles,
		prompter: prompter,
		title:    controller.TitleCreate,
		button:   controller.ButtonCreate,
		count:    "0 Data",
		controls: controller.Controls{
			SearchMethod: types.SearchLinear,
			SortBy:       types.SortByNIM,
			Order:        types.OrderAsc,
			Algo:         types.AlgoMerge,
		},
	}
}

var _ controller.View = (*Screen)(nil)

func (s *Screen) SetLoading(on bool) {
	s.loading = on
	if on {
		fmt.Fprintln(s.out, s.styles.Muted.Render(LoadingText))
	}
}

func (s *Screen) ClearRows() { s.rows = nil }
func (s *Screen) AppendRow(row controller.Row) { s.rows = append(s.rows, row) }
func (s *Screen) ShowEmpty(on bool) { s.empty = on }
func (s *Screen) SetCount(label string) { s.count = label }

func (s *Screen) FormValues() controller.Form { return s.form }
func (s *Screen) SetFormValues(f controller.Form) { s.form = f }
func (s *Screen) SetIDLocked(locked bool) { s.idLocked = locked }
func (s *Screen) ShowCancel(on bool) { s.cancel = on }
func (s *Screen) FocusForm() { s.focused = true }

func (s *Screen) SetFormMode(title, button string) {
	s.title = title
	s.button = button
}

// Controls returns the search and sort selection.
func (s *Screen) Controls() controller.Controls { return s.controls }

// SetControls replaces the search and sort selection.
func (s *Screen) SetControls(c controller.Controls) { s.controls = c }

// Alert prints msg at once. Success messages are shown in green.
func (s *Screen) Alert(msg string) {
	style := s.styles.Alert
	if msg == controller.MsgCreated || msg == controller.MsgUpdated {
		style = s.styles.Success
	}
	fmt.Fprintln(s.out, style.Render("! "+Sanitize(msg)))
}

// Confirm asks the prompter; a failed prompt counts as "no".
func (s *Screen) Confirm(msg string) bool {
	if s.prompter == nil {
		return false
	}
	ok, err := s.prompter.Confirm(msg)
	return err == nil && ok
}

// Rows returns the rendered rows.
func (s *Screen) Rows() []controller.Row {
	return append([]controller.Row(nil), s.rows...)
}

// IDLocked reports whether the identifier field is read-only.
func (s *Screen) IDLocked() bool { return s.idLocked }

// FormMode returns the form header and button text.
func (s *Screen) FormMode() (title, button string) { return s.title, s.button }

// CancelVisible reports whether the cancel control is shown.
func (s *Screen) CancelVisible() bool { return s.cancel }

// TakeFocus reports and clears a pending FocusForm request.
func (s *Screen) TakeFocus() bool {
	f := s.focused
	s.focused = false
	return f
}

// Render draws the whole screen.
func (s *Screen) Render() string {
	var b strings.Builder

	b.WriteString(s.styles.Title.Render(AppTitle))
	b.WriteString("  ")
	b.WriteString(s.styles.Count.Render(s.count))
	b.WriteString("\n")
	b.WriteString(s.styles.Muted.Render(s.controlsLine()))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(s.styles.Muted.Render(LoadingText))
	case s.empty:
		b.WriteString(s.styles.Muted.Render(EmptyBanner))
	default:
		b.WriteString(s.renderTable())
	}
	b.WriteString("\n\n")
	b.WriteString(s.renderForm())
	b.WriteString("\n")

	return b.String()
}

func (s *Screen) controlsLine() string {
	c := s.controls
	search := "-"
	if c.Search != "" {
		search = fmt.Sprintf("%q (%s)", Sanitize(c.Search), c.SearchMethod)
	}
	return fmt.Sprintf("Cari: %s  Urut: %s %s (%s)", search, c.SortBy, c.Order, c.Algo)
}

func (s *Screen) renderTable() string {
	return RenderRows(s.styles, s.rows)
}

// RenderRows draws rows as a bordered table. Text fields are sanitized.
func RenderRows(styles Styles, rows []controller.Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Border).
		Headers("NIM", "Nama", "Jurusan", "IPK").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.Header
			case col == 3:
				return styles.Number
			default:
				return styles.Cell
			}
		})

	for _, r := range rows {
		t.Row(Sanitize(r.NIM), Sanitize(r.Nama), Sanitize(r.Jurusan), r.IPK)
	}
	return t.String()
}

func (s *Screen) renderForm() string {
	nim := Sanitize(s.form.NIM)
	if s.idLocked {
		nim += " " + LockedMark
	}

	lines := []string{
		s.styles.Title.Render(s.title),
		"NIM     : " + nim,
		"Nama    : " + Sanitize(s.form.Nama),
		"Jurusan : " + Sanitize(s.form.Jurusan),
		"IPK     : " + Sanitize(s.form.IPK),
		"",
	}
	actions := "[" + s.button + "]"
	if s.cancel {
		actions += " [" + CancelText + "]"
	}
	lines = append(lines, actions)

	return s.styles.Panel.Render(strings.Join(lines, "\n"))
}
