package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mahasiswa-app/mhs/internal/api"
	"github.com/mahasiswa-app/mhs/internal/config"
	"github.com/mahasiswa-app/mhs/internal/logging"
)

// Command annotations read by setup.
const (
	// annotationLogs overrides where log output goes: "stderr" or "quiet".
	annotationLogs = "logs"
)

var (
	cfgFile string
	verbose bool

	cfg       *config.Config
	cfgLoader *config.Loader
	logSink   *logging.Sink
)

var rootCmd = &cobra.Command{
	Use:   "mhs",
	Short: "Manage student records on a mahasiswa server",
	Long: `mhs is a client for a mahasiswa record server.

Run without a subcommand it opens an interactive terminal session. The
subcommands cover scripted use (list, add, update, delete, stats, export,
import) and a browser front end (serve).

Settings come from flags, MHS_* environment variables and an optional
config file (see "mhs config init").`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	Annotations:        map[string]string{annotationLogs: "quiet"},
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runTUI,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Record Commands:"},
		&cobra.Group{ID: "files", Title: "File Commands:"},
		&cobra.Group{ID: "frontends", Title: "Front Ends:"},
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: search the user config dir and .)")
	flags.String("server", config.DefaultServerURL, "Record server base URL")
	flags.String("log-file", "", "Write logs to this file (rotated)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Duration("timeout", 0, "Request timeout (0 means none)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"server":   "server_url",
	"log-file": "log_file",
	"no-color": "no_color",
	"timeout":  "timeout",
}

// loadConfig resolves the configuration for cmd. Flags set on the command
// line win over the file and the environment.
func loadConfig(cmd *cobra.Command) (*config.Loader, *config.Config, error) {
	loader := config.NewLoader()
	for name, key := range flagKeys {
		if err := loader.BindFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return nil, nil, err
		}
	}
	if f := cmd.LocalFlags().Lookup("port"); f != nil {
		if err := loader.BindFlag("web.port", f); err != nil {
			return nil, nil, err
		}
	}

	c, err := loader.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return loader, c, nil
}

func setup(cmd *cobra.Command, args []string) error {
	loader, c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfgLoader, cfg = loader, c

	opts := logging.Options{File: cfg.LogFile, Quiet: !verbose}
	switch cmd.Annotations[annotationLogs] {
	case "stderr":
		opts.Quiet = false
	case "quiet":
		opts.Quiet = true
	}
	logSink = logging.Open(opts)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if logSink == nil {
		return nil
	}
	return logSink.Close()
}

// newClient builds the API client from the loaded configuration.
func newClient() (*api.Client, error) {
	client, err := api.New(&api.Config{
		BaseURL: cfg.ServerURL,
		Path:    cfg.APIPath,
		Timeout: cfg.Timeout,
		Logger:  logSink.Logger("api"),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid server address: %w", err)
	}
	return client, nil
}
