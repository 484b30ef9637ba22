package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/policy"
)

// policyShowCmd represents the policy show command
var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy",
	Long: `Print the effective policy.

Without --policy the configured policy file is shown, or the built-in
policy when none is configured. Print the built-in policy to a file to
start a custom one.

Example:
  churchctl policy show > /etc/church/policy.yml
  churchctl policy show --policy /etc/church/policy.yml -o json`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("policy")
		output, _ := cmd.Flags().GetString("output")

		doc, err := loadDocument(policyPath(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load policy: %v\n", err)
			os.Exit(1)
		}

		if err := showPolicy(os.Stdout, doc, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show policy: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyShowCmd)
	policyShowCmd.Flags().String("policy", "", "Policy file (default: configured or built-in policy)")
	policyShowCmd.Flags().StringP("output", "o", "yaml", "Output format (yaml or json)")
}

// policyJSON is the JSON rendering of a policy document.
type policyJSON struct {
	SHA256     string                                      `json:"sha256"`
	Roles      map[string]map[string]permission.Permission `json:"roles"`
	Pages      pagesJSON                                   `json:"pages"`
	Navigation navigationJSON                              `json:"navigation"`
}

type pagesJSON struct {
	Public        []string `json:"public"`
	RequiresLogin []string `json:"requires_login"`
}

type navigationJSON struct {
	AdminOnly  []string `json:"admin_only"`
	Management []string `json:"management"`
}

func showPolicy(w io.Writer, doc *policy.Document, output string) error {
	switch output {
	case "yaml", "":
		_, err := io.WriteString(w, doc.Text())
		return err
	case "json":
		out := policyJSON{
			SHA256: doc.SHA256(),
			Roles:  make(map[string]map[string]permission.Permission),
			Pages: pagesJSON{
				Public:        doc.Pages.Public,
				RequiresLogin: doc.Pages.RequiresLogin,
			},
			Navigation: navigationJSON{
				AdminOnly:  doc.Pages.AdminOnly,
				Management: doc.Pages.Management,
			},
		}
		for _, role := range doc.Table.Roles() {
			out.Roles[role.String()] = doc.Table.Matrix(role)
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown output format %q: must be yaml or json", output)
	}
}
