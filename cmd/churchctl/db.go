package main

import "github.com/spf13/cobra"

// dbCmd groups the db subcommands.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database schema",
	Long:  `Apply, roll back and inspect the golang-migrate migrations under db/migrations.`,
	Run:   requireSubcommand,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
