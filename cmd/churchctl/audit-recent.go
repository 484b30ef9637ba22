package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/config"
)

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Print the newest audit messages",
	Long: `Print the newest audit messages, newest first.

Requires AUDIT_DATABASE_URL.

Example:
  churchctl audit recent
  churchctl audit recent -n 100`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if cfg.AuditDatabaseURL == "" {
			fmt.Fprintln(os.Stderr, "AUDIT_DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		store, err := audit.NewStore(cfg.AuditDatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open audit store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()

		messages, err := store.Recent(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read audit messages: %v\n", err)
			os.Exit(1)
		}
		printAuditMessages(os.Stdout, messages)
	},
}

func init() {
	auditCmd.AddCommand(auditRecentCmd)
	auditRecentCmd.Flags().IntP("limit", "n", 20, "Number of messages to print")
}

func printAuditMessages(w io.Writer, messages []audit.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(w, "No audit messages recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSEVERITY\tMSGID\tMESSAGE")
	for _, m := range messages {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", m.Timestamp.UTC().Format(time.RFC3339), m.Severity, m.Msgid, m.Message)
	}
	_ = tw.Flush()
}
