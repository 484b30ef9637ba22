package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/config"
	"github.com/miguelmarques1/church-web/pkg/db"
	"github.com/miguelmarques1/church-web/pkg/server/store"
	gormstore "github.com/miguelmarques1/church-web/pkg/server/store/gorm"
)

// policyHistoryCmd represents the policy history command
var policyHistoryCmd = &cobra.Command{
	Use:   "history [version]",
	Short: "List the policy versions loaded by the server",
	Long: `List the policy versions the server has loaded, newest first.

With a version argument the stored policy text of that version is printed.

Example:
  churchctl policy history
  churchctl policy history 3 > policy-v3.yml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Connect(context.Background(), db.Config{URL: cfg.DatabaseURL})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		policyStore := gormstore.NewPolicyStore(database)

		if len(args) == 1 {
			var version int
			if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid version %q\n", args[0])
				os.Exit(1)
			}
			v, err := policyStore.GetPolicyVersion(version)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to fetch policy version %d: %v\n", version, err)
				os.Exit(1)
			}
			fmt.Print(v.PolicyText)
			return
		}

		versions, err := policyStore.ListPolicyVersions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list policy versions: %v\n", err)
			os.Exit(1)
		}
		printPolicyHistory(os.Stdout, versions)
	},
}

func init() {
	policyCmd.AddCommand(policyHistoryCmd)
}

func printPolicyHistory(w io.Writer, versions []store.PolicyVersion) {
	if len(versions) == 0 {
		fmt.Fprintln(w, "No policy versions recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tLOADED\tSHA256\tSOURCE")
	for _, v := range versions {
		fmt.Fprintf(tw, "%d\t%s\t%.12s\t%s\n", v.Version, v.CreatedAt.UTC().Format(time.RFC3339), v.PolicySHA256, v.Source)
	}
	_ = tw.Flush()
}
