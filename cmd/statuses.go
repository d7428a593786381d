/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	sm "github.com/aalbahar80/rems-ai-sub000/internal/statemachine"
	"github.com/spf13/cobra"
)

// statusesCmd represents the statuses command
var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Print the maintenance order status registry",
	Long:  `Print every maintenance order status with its legal next statuses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STATUS\tNEXT\tAPPROVABLE")
		for _, status := range sm.AllStatuses {
			next := make([]string, 0)
			for _, s := range sm.AllowedTransitions(status) {
				next = append(next, string(s))
			}
			allowed := strings.Join(next, ", ")
			if sm.IsTerminal(status) {
				allowed = "(terminal)"
			}
			fmt.Fprintf(w, "%s\t%s\t%t\n", status, allowed, sm.CanApprove(status))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusesCmd)
}
