package main

import "github.com/spf13/cobra"

// configurationCmd groups the configuration subcommands.
var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Inspect church-web configuration",
	Long:  `Inspect the configuration resolved from defaults, church.yml and the environment.`,
	Run:   requireSubcommand,
}

func init() {
	rootCmd.AddCommand(configurationCmd)
}
