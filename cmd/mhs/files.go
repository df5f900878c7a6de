package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mahasiswa-app/mhs/internal/api"
	"github.com/mahasiswa-app/mhs/internal/export"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "files",
	Short:   "Export records to CSV or XLSX",
	Long: `Write the listed records to a file. The format follows the extension
(.csv or .xlsx). The query flags work as for "mhs list".

Example:
  mhs export -o mahasiswa.xlsx --sort-by nama`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("output")
		if _, err := export.FormatFromPath(path); err != nil {
			return err
		}
		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		records, err := client.List(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		if err := export.WriteFile(path, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d data diekspor ke %s\n", len(records), path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "files",
	Short:   "Import records from CSV or XLSX",
	Long: `Create one record per row of a CSV or XLSX file. The first row must
name the columns NIM, Nama, Jurusan and IPK (any order, any case).

The whole file is checked before anything is sent. Rows are then created in
order; the import stops at the first row the server rejects.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := export.ReadFile(args[0])
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, rec := range records {
			if _, err := client.Create(cmd.Context(), rec); err != nil {
				fmt.Fprintf(out, "%d data diimpor\n", i)
				if detail, ok := api.Detail(err); ok {
					err = errors.New(detail)
				}
				return fmt.Errorf("record %d (NIM %s): %w", i+1, rec.NIM, err)
			}
		}
		fmt.Fprintf(out, "%d data diimpor\n", len(records))
		return nil
	},
}

func init() {
	addQueryFlags(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Output file (.csv or .xlsx)")
	_ = exportCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(exportCmd, importCmd)
}
