package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mahasiswa-app/mhs/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage the mhs config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the current settings",
	Long: `Write the effective settings to a config file. The format follows the
extension: .yaml/.yml or .toml. Without a path the file goes to the user
config directory as config.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			dir, err := config.DefaultDir()
			if err != nil {
				return fmt.Errorf("cannot find the user config directory: %w", err)
			}
			path = filepath.Join(dir, "config.yaml")
		}

		if err := config.WriteFile(path, cfg, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		data, err := config.Encode(cfg, format)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if file := cfgLoader.File(); file != "" {
			fmt.Fprintf(out, "# file: %s\n", file)
		} else {
			fmt.Fprintln(out, "# file: (none)")
		}
		_, err = out.Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	configShowCmd.Flags().String("format", "yaml", "Output format: yaml or toml")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
