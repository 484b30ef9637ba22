package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/policy"
)

// policyValidateCmd represents the policy validate command
var policyValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a policy file",
	Long: `Validate a policy file without loading it into a server.

Parse errors exit with status 1. Permissions left undefined for some role
are reported as warnings, or as errors with --strict.

Example:
  churchctl policy validate /etc/church/policy.yml
  churchctl policy validate --strict policy.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		strict, _ := cmd.Flags().GetBool("strict")

		if err := validatePolicy(os.Stdout, args[0], strict); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid policy: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyValidateCmd)
	policyValidateCmd.Flags().Bool("strict", false, "Treat undefined permissions as errors")
}

func validatePolicy(w io.Writer, path string, strict bool) error {
	doc, err := policy.Load(path)
	if err != nil {
		return err
	}
	if _, err := doc.Build(); err != nil {
		return err
	}

	gaps := doc.Validate()
	for _, gap := range gaps {
		fmt.Fprintf(w, "warning: %s\n", gap)
	}
	if strict && len(gaps) > 0 {
		return fmt.Errorf("%d undefined permission(s)", len(gaps))
	}

	fmt.Fprintf(w, "Policy is valid (sha256: %s)\n", doc.SHA256())
	return nil
}
