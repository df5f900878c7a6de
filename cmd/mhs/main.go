package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mahasiswa-app/mhs/internal/controller"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Controller errors have already been shown as an alert.
		if !errors.Is(err, controller.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
