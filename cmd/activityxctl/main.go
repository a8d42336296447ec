package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag    string
	periodFlag string
	fromFlag   string
	toFlag     string
	rootCmd    = &cobra.Command{
		Use:   "activityxctl",
		Short: "CLI client for the activity aggregation service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8090", "Aggregation service base URL")

	// sync subcommand
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger one fetch-merge-drain cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/sync", nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(syncCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// periodQuery renders the shared period flags as a query string.
func periodQuery() string {
	q := "?period=" + periodFlag
	if fromFlag != "" {
		q += "&from=" + fromFlag
	}
	if toFlag != "" {
		q += "&to=" + toFlag
	}
	return q
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&periodFlag, "period", "p", "daily", "Period: daily, weekly, monthly, annual, custom")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Custom period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Custom period end (YYYY-MM-DD)")
}
