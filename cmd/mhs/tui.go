package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mahasiswa-app/mhs/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:         "tui",
	GroupID:     "frontends",
	Short:       "Interactive terminal session (default)",
	Annotations: map[string]string{annotationLogs: "quiet"},
	Long: `Open the record table in the terminal.

The table is loaded once at start. From the menu you can search, sort, add,
edit and delete records; every change reloads the full table. When stdin is
not a terminal the prompts fall back to plain line input.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	prompter := ui.NewHuhPrompter(cmd.InOrStdin(), out, !ui.IsInteractive(os.Stdin), cfg.NoColor)
	app := ui.NewApp(client, ui.Options{
		Out:      out,
		Prompter: prompter,
		NoColor:  cfg.NoColor,
		Logger:   logSink.Logger("tui"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
