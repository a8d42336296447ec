package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type reportRow struct {
	UserID        string  `json:"userId"`
	Name          string  `json:"name"`
	ActiveSeconds float64 `json:"activeSeconds"`
	TotalSeconds  float64 `json:"totalSeconds"`
	ActiveTime    struct {
		Hours   int64 `json:"hours"`
		Minutes int64 `json:"minutes"`
		Seconds int64 `json:"seconds"`
	} `json:"activeTime"`
	BatchCount int `json:"batchCount"`
}

func runReport(apiURL string, out io.Writer) error {
	data, err := doGet(apiURL + "/api/users" + periodQuery())
	if err != nil {
		return err
	}

	var body struct {
		Period string      `json:"period"`
		Users  []reportRow `json:"users"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("unexpected response: %w", err)
	}

	fmt.Fprintf(out, "Activity report (%s)\n\n", body.Period)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tNAME\tACTIVE\tBATCHES")
	for _, r := range body.Users {
		fmt.Fprintf(tw, "%s\t%s\t%02d:%02d:%02d\t%d\n",
			r.UserID, r.Name,
			r.ActiveTime.Hours, r.ActiveTime.Minutes, r.ActiveTime.Seconds,
			r.BatchCount)
	}
	return tw.Flush()
}

func init() {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print a per-user activity table for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(apiFlag, os.Stdout)
		},
	}
	addPeriodFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}
