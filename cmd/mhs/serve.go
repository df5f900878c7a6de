package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/mahasiswa-app/mhs/internal/api"
	"github.com/mahasiswa-app/mhs/internal/config"
	"github.com/mahasiswa-app/mhs/internal/web"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	GroupID:     "frontends",
	Short:       "Serve the record table to a browser",
	Annotations: map[string]string{annotationLogs: "stderr"},
	Long: `Start a local web page for the record table.

Each browser session gets its own table, form and search state. Changes made
in one page make the other open pages reload, via a WebSocket at /ws.

When a config file is in use it is watched; a changed server_url is applied
without a restart.

Example usage:
  mhs serve                   # Start on the configured port (default 8080)
  mhs serve --port 9000       # Start on a custom port
  mhs serve --open            # Also open the page in the default browser`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		open, _ := cmd.Flags().GetBool("open")

		client, err := newClient()
		if err != nil {
			return err
		}

		server, stop, err := startServe(cmd, client)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Web server started on %s\n", server.URL())
		fmt.Fprintf(out, "Record server: %s\n", client.Endpoint(""))
		fmt.Fprintf(out, "Health check: %shealth\n", server.URL())
		fmt.Fprintln(out, "\nPress Ctrl+C to stop...")

		if open {
			if err := browser.OpenURL(server.URL()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not open browser: %v\n", err)
			}
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-ctx.Done()

		fmt.Fprintln(out, "\nShutting down web server...")
		if err := stop(); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}
		fmt.Fprintln(out, "Web server stopped")
		return nil
	},
}

// startServe starts the config watcher, when a config file is in use, and
// then the web server. On error nothing is left running. stop shuts both
// down.
func startServe(cmd *cobra.Command, client *api.Client) (*web.Server, func() error, error) {
	var watcher *config.Watcher
	if path := cfgLoader.File(); path != "" {
		logger := logSink.Logger("config")
		w, err := config.NewWatcher(path, config.DefaultDebounce, logger, func() {
			_, next, err := loadConfig(cmd)
			if err != nil {
				logger.Printf("Ignoring config change: %v", err)
				return
			}
			if err := client.SetBaseURL(next.ServerURL); err != nil {
				logger.Printf("Ignoring server_url %q: %v", next.ServerURL, err)
				return
			}
			logger.Printf("Record server is now %s", client.BaseURL())
		})
		if err != nil {
			return nil, nil, err
		}
		if err := w.Start(); err != nil {
			_ = w.Stop()
			return nil, nil, err
		}
		watcher = w
	}

	server := web.NewServer(&web.Config{
		Port:   cfg.Web.Port,
		Store:  client,
		Logger: logSink.Logger("web"),
	})
	if err := server.Start(); err != nil {
		if watcher != nil {
			_ = watcher.Stop()
		}
		return nil, nil, fmt.Errorf("failed to start web server: %w", err)
	}

	stop := func() error {
		if watcher != nil {
			_ = watcher.Stop()
		}
		return server.Stop()
	}
	return server, stop, nil
}

func init() {
	serveCmd.Flags().IntP("port", "p", config.DefaultWebPort, "Port to listen on")
	serveCmd.Flags().Bool("open", false, "Open the page in the default browser")

	rootCmd.AddCommand(serveCmd)
}
