package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <role> <resource> <action>",
	Short: "Check whether a role may perform an action on a resource",
	Long: `Check whether a role may perform an action on a resource.

Use "-" as the role for an unauthenticated caller. Prints "allowed" or
"denied" and exits with status 1 when denied.

Example:
  churchctl check leader members update
  churchctl check member news create --policy /etc/church/policy.yml`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("policy")

		svc, err := loadService(policyPath(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load policy: %v\n", err)
			os.Exit(1)
		}

		allowed, err := runCheck(os.Stdout, svc, roleArg(args[0]), args[1], args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !allowed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("policy", "", "Policy file (default: configured or built-in policy)")
}

func runCheck(w io.Writer, svc *permission.Service, role, resource, actionName string) (bool, error) {
	action, err := permission.ActionString(actionName)
	if err != nil {
		return false, fmt.Errorf("invalid action %q: must be one of create, read, update, delete", actionName)
	}

	allowed := svc.HasPermission(role, resource, action)
	if allowed {
		fmt.Fprintln(w, "allowed")
	} else {
		fmt.Fprintln(w, "denied")
	}
	return allowed, nil
}
