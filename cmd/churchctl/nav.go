package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

// navCmd represents the nav command
var navCmd = &cobra.Command{
	Use:   "nav <role>",
	Short: "Print the navigation menu a role sees",
	Long: `Print the navigation menu a role sees, one link per line.

Use "-" as the role for an unauthenticated caller.

Example:
  churchctl nav -
  churchctl nav leader`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("policy")

		svc, err := loadService(policyPath(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load policy: %v\n", err)
			os.Exit(1)
		}

		runNav(os.Stdout, svc, roleArg(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(navCmd)
	navCmd.Flags().String("policy", "", "Policy file (default: configured or built-in policy)")
}

func runNav(w io.Writer, svc *permission.Service, role string) {
	for _, item := range svc.FilterNavigation(role, permission.DefaultNavigation()) {
		fmt.Fprintf(w, "%-16s %s\n", item.Href, item.Name)
	}
}
