package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked users with windowed activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/users" + periodQuery())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addPeriodFlags(listCmd)
	usersCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get one user with apps and websites breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/users/" + args[0] + periodQuery())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addPeriodFlags(getCmd)
	usersCmd.AddCommand(getCmd)

	rootCmd.AddCommand(usersCmd)

	// purge
	var yes bool
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Wipe the local aggregate cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("purge deletes all local aggregates; pass --yes to confirm")
			}
			data, err := doDelete(apiFlag + "/api/users")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	purgeCmd.Flags().BoolVar(&yes, "yes", false, "Confirm the purge")
	rootCmd.AddCommand(purgeCmd)
}
