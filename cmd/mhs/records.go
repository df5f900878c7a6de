package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mahasiswa-app/mhs/internal/api"
	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/types"
)

var addCmd = &cobra.Command{
	Use:     "add",
	GroupID: "records",
	Short:   "Add a record",
	Long: `Add a record. All four fields are required.

Example:
  mhs add --nim 2201 --nama "Budi Santoso" --jurusan Informatika --ipk 3.5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		view := newCLIView(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
		ctrl := controller.New(client, view, &controller.Config{Logger: logSink.Logger("mhs")})

		ctrl.ResetForm()
		view.SetFormValues(formFromFlags(cmd, controller.Form{}))
		return ctrl.Save(cmd.Context())
	},
}

var updateCmd = &cobra.Command{
	Use:     "update <nim>",
	GroupID: "records",
	Short:   "Update a record",
	Long: `Update the record with the given NIM. Fields not given keep their
current value; the NIM itself cannot be changed.

Example:
  mhs update 2201 --ipk 3.75`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nim := args[0]
		client, err := newClient()
		if err != nil {
			return err
		}
		view := newCLIView(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
		ctrl := controller.New(client, view, &controller.Config{Logger: logSink.Logger("mhs")})

		q := types.Query{Search: nim, SearchMethod: types.SearchBinary}
		if err := ctrl.FetchData(cmd.Context(), q); err != nil {
			return err
		}
		err = ctrl.Dispatch(cmd.Context(), controller.Action{Kind: controller.ActionEdit, NIM: nim})
		if errors.Is(err, controller.ErrUnknownRow) {
			return errNotFound(nim)
		}
		if err != nil {
			return err
		}

		form := formFromFlags(cmd, view.FormValues())
		form.NIM = nim
		view.SetFormValues(form)
		return checkGone(nim, ctrl.Save(cmd.Context()))
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <nim>",
	GroupID: "records",
	Short:   "Delete a record",
	Long: `Delete the record with the given NIM.

The deletion is confirmed interactively unless --yes is given. Without a
terminal and without --yes nothing is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nim := args[0]
		yes, _ := cmd.Flags().GetBool("yes")

		client, err := newClient()
		if err != nil {
			return err
		}
		view := newCLIView(cmd.OutOrStdout(), cmd.ErrOrStderr(), yes)
		ctrl := controller.New(client, view, &controller.Config{
			Logger:   logSink.Logger("mhs"),
			OnChange: func(kind controller.ChangeKind, nim string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Data mahasiswa dengan NIM %s dihapus.\n", nim)
			},
		})

		return checkGone(nim, ctrl.Dispatch(cmd.Context(), controller.Action{Kind: controller.ActionDelete, NIM: nim}))
	},
}

func errNotFound(nim string) error {
	return fmt.Errorf("mahasiswa dengan NIM %s tidak ditemukan", nim)
}

// checkGone turns a 404 from the server into a not-found error so the exit
// message names the record, not just the alert text.
func checkGone(nim string, err error) error {
	if api.IsNotFound(err) {
		return errNotFound(nim)
	}
	return err
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("nim", "", "Student number")
	cmd.Flags().String("nama", "", "Full name")
	cmd.Flags().String("jurusan", "", "Department")
	cmd.Flags().String("ipk", "", "Grade point average")
}

// formFromFlags overlays the record flags that were set onto base.
func formFromFlags(cmd *cobra.Command, base controller.Form) controller.Form {
	set := func(name string, dst *string) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	set("nim", &base.NIM)
	set("nama", &base.Nama)
	set("jurusan", &base.Jurusan)
	set("ipk", &base.IPK)
	return base
}

func init() {
	addRecordFlags(addCmd)
	for _, name := range []string{"nim", "nama", "jurusan", "ipk"} {
		_ = addCmd.MarkFlagRequired(name)
	}

	updateCmd.Flags().String("nama", "", "New full name")
	updateCmd.Flags().String("jurusan", "", "New department")
	updateCmd.Flags().String("ipk", "", "New grade point average")

	deleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking")

	rootCmd.AddCommand(addCmd, updateCmd, deleteCmd)
}
