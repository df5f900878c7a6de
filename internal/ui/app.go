package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/types"
)

// Menu keys.
const (
	ActionSearch  = "search"
	ActionSort    = "sort"
	ActionSave    = "save"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionCancel  = "cancel"
	ActionRefresh = "refresh"
	ActionQuit    = "quit"
)

// Options configures an App.
type Options struct {
	Out      io.Writer
	Prompter Prompter
	NoColor  bool
	Logger   *log.Logger
}

// App is the interactive terminal loop around one controller.
type App struct {
	ctrl     *controller.Controller
	screen   *Screen
	prompter Prompter
	out      io.Writer
	logger   *log.Logger
}

// NewApp wires a screen and a controller for store.
func NewApp(store controller.Store, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	screen := NewScreen(opts.Out, NewStyles(opts.Out, opts.NoColor), opts.Prompter)

	return &App{
		ctrl:     controller.New(store, screen, &controller.Config{Logger: opts.Logger}),
		screen:   screen,
		prompter: opts.Prompter,
		out:      opts.Out,
		logger:   opts.Logger,
	}
}

// Screen returns the app's view.
func (a *App) Screen() *Screen { return a.screen }

// Controller returns the app's controller.
func (a *App) Controller() *controller.Controller { return a.ctrl }

// Run loads the table and serves menu actions until the user quits, aborts
// the menu or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.ctrl.ResetForm()
	_ = a.ctrl.FetchData(ctx, types.Query{})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.screen.Render())

		key, err := a.prompter.Menu("Pilih aksi", a.menu())
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("menu: %w", err)
		}
		if key == ActionQuit {
			return nil
		}

		if err := a.handle(ctx, key); err != nil {
			if errors.Is(err, controller.ErrReported) || errors.Is(err, ErrAborted) {
				continue
			}
			a.logger.Printf("action %s failed: %v", key, err)
			a.screen.Alert(err.Error())
		}
	}
}

func (a *App) menu() []MenuItem {
	_, button := a.screen.FormMode()
	items := []MenuItem{
		{Key: ActionSearch, Label: "Cari"},
		{Key: ActionSort, Label: "Urutkan"},
		{Key: ActionSave, Label: button},
	}
	if len(a.screen.Rows()) > 0 {
		items = append(items,
			MenuItem{Key: ActionEdit, Label: "Edit"},
			MenuItem{Key: ActionDelete, Label: "Hapus"},
		)
	}
	if a.screen.CancelVisible() {
		items = append(items, MenuItem{Key: ActionCancel, Label: CancelText})
	}
	return append(items,
		MenuItem{Key: ActionRefresh, Label: "Muat ulang"},
		MenuItem{Key: ActionQuit, Label: "Keluar"},
	)
}

func (a *App) handle(ctx context.Context, key string) error {
	switch key {
	case ActionSearch:
		c := a.screen.Controls()
		if err := a.prompter.SearchForm(&c); err != nil {
			return err
		}
		a.screen.SetControls(c)
		return a.ctrl.Search(ctx)

	case ActionSort:
		c := a.screen.Controls()
		if err := a.prompter.SortForm(&c); err != nil {
			return err
		}
		a.screen.SetControls(c)
		return a.ctrl.Sort(ctx)

	case ActionSave:
		return a.save(ctx)

	case ActionEdit, ActionDelete:
		nim, err := a.prompter.PickRow("Pilih mahasiswa", a.screen.Rows())
		if err != nil {
			return err
		}
		if err := a.ctrl.Dispatch(ctx, controller.Action{Kind: controller.ActionKind(key), NIM: nim}); err != nil {
			return err
		}
		if a.screen.TakeFocus() {
			return a.save(ctx)
		}
		return nil

	case ActionCancel:
		a.ctrl.ResetForm()
		return nil

	case ActionRefresh:
		return a.ctrl.FetchData(ctx, types.Query{})

	default:
		return fmt.Errorf("unknown action %q", key)
	}
}

// save lets the user fill the form, then submits it. Backing out of the form
// keeps what was typed so far but sends nothing.
func (a *App) save(ctx context.Context) error {
	title, _ := a.screen.FormMode()
	form := a.screen.FormValues()
	err := a.prompter.RecordForm(title, &form, a.screen.IDLocked())
	a.screen.SetFormValues(form)
	if err != nil {
		return err
	}
	return a.ctrl.Save(ctx)
}
