package main

import "github.com/spf13/cobra"

// policyCmd groups the policy subcommands.
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the permission policy",
	Long:  `Show, validate, watch and list the recorded versions of the permission policy document.`,
	Run:   requireSubcommand,
}

func init() {
	rootCmd.AddCommand(policyCmd)
}
