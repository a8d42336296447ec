package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Download the period's aggregates as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/export" + periodQuery())
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", outPath, len(data))
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	addPeriodFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
