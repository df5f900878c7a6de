package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/types"
	"github.com/mahasiswa-app/mhs/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "records",
	Short:   "List records",
	Long: `List records, optionally filtered and sorted by the server.

Examples:
  mhs list
  mhs list --search budi
  mhs list --search 2201 --method binary
  mhs list --sort-by ipk --order desc --algo bubble -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")

		client, err := newClient()
		if err != nil {
			return err
		}
		records, err := client.List(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		return printRecords(cmd.OutOrStdout(), format, records)
	},
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "Search text (NIM or name)")
	cmd.Flags().String("method", "", "Search method: linear or binary")
	cmd.Flags().String("sort-by", "", "Sort key: nim, nama, jurusan or ipk")
	cmd.Flags().String("order", "", "Sort order: asc or desc")
	cmd.Flags().String("algo", "", "Sort algorithm: merge, bubble or selection")
}

// queryFromFlags builds the list query. Unset flags are left out so the
// server applies its own defaults.
func queryFromFlags(cmd *cobra.Command) (types.Query, error) {
	search, _ := cmd.Flags().GetString("search")
	method, _ := cmd.Flags().GetString("method")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	order, _ := cmd.Flags().GetString("order")
	algo, _ := cmd.Flags().GetString("algo")

	q := types.Query{
		Search:       search,
		SearchMethod: types.SearchMethod(method),
		SortBy:       types.SortKey(sortBy),
		Order:        types.Order(order),
		Algo:         types.SortAlgo(algo),
	}
	return q, q.Validate()
}

func printRecords(w io.Writer, format string, records []types.Record) error {
	switch format {
	case "", "table":
		if len(records) == 0 {
			fmt.Fprintln(w, ui.EmptyBanner)
			return nil
		}
		rows := make([]controller.Row, len(records))
		for i, r := range records {
			rows[i] = controller.RowOf(r)
		}
		fmt.Fprintln(w, ui.RenderRows(ui.NewStyles(w, cfg.NoColor), rows))
		fmt.Fprintf(w, "%d Data\n", len(records))
		return nil

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)

	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(records)

	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func init() {
	addQueryFlags(listCmd)
	listCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(listCmd)
}
