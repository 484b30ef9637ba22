package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

// pageCmd represents the page command
var pageCmd = &cobra.Command{
	Use:   "page <role> <path>",
	Short: "Show how a page is classified and whether a role may open it",
	Long: `Show how a page is classified and whether a role may open it.

Use "-" as the role for an unauthenticated caller. Exits with status 1
when the page is not accessible.

Example:
  churchctl page - /members
  churchctl page member /news/create`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("policy")

		svc, err := loadService(policyPath(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load policy: %v\n", err)
			os.Exit(1)
		}

		if !runPage(os.Stdout, svc, roleArg(args[0]), args[1]) {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.Flags().String("policy", "", "Policy file (default: configured or built-in policy)")
}

func runPage(w io.Writer, svc *permission.Service, role, path string) bool {
	class := svc.ClassifyPage(path)
	allowed := svc.CanAccessPage(role, path)

	fmt.Fprintf(w, "class:      %s\n", class)
	fmt.Fprintf(w, "accessible: %t\n", allowed)
	fmt.Fprintf(w, "navigation: %s\n", svc.NavigationTarget(role, path))
	fmt.Fprintf(w, "in menu:    %t\n", svc.ShouldShowInNavigation(role, path))
	return allowed
}
