package main

import "github.com/spf13/cobra"

// auditCmd groups the audit subcommands.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read persisted audit messages",
	Long:  `Read the audit messages the server stored in AUDIT_DATABASE_URL.`,
	Run:   requireSubcommand,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
