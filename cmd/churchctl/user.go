package main

import "github.com/spf13/cobra"

// userCmd groups the user subcommands.
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage login users",
	Long:  `Manage the users that can log in to church-web.`,
	Run:   requireSubcommand,
}

func init() {
	rootCmd.AddCommand(userCmd)
}
