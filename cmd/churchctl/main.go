package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "churchctl",
	Short: "church-web authorization server and tools",
	Long: `churchctl runs the church-web authorization server and answers
permission, page and navigation questions against a policy from the
command line.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
