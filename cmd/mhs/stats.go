package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mahasiswa-app/mhs/internal/types"
	"github.com/mahasiswa-app/mhs/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "records",
	Short:   "Show record statistics",
	Long: `Show the number of records, the mean IPK and the number of students per
department.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")

		client, err := newClient()
		if err != nil {
			return err
		}
		records, err := client.List(cmd.Context(), types.Query{})
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}
		summary := types.Summarize(records)

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		case "yaml":
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(summary)
		case "", "table":
		default:
			return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
		}

		styles := ui.NewStyles(out, cfg.NoColor)
		fmt.Fprintf(out, "%s %d\n", styles.Title.Render("Total mahasiswa:"), summary.Total)
		fmt.Fprintf(out, "%s %s\n", styles.Title.Render("Rata-rata IPK:  "), types.FormatIPK(summary.AvgIPK))

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(styles.Border).
			Headers("Jurusan", "Jumlah").
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return styles.Header
				case col == 1:
					return styles.Number
				default:
					return styles.Cell
				}
			})
		for _, name := range summary.Departments() {
			t.Row(ui.Sanitize(name), fmt.Sprint(summary.ByJurusan[name]))
		}
		fmt.Fprintln(out, t.String())
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(statsCmd)
}
