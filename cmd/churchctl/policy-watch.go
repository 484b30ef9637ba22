package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/miguelmarques1/church-web/pkg/diagnostics"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/policy"
)

// policyWatchCmd represents the policy watch command
var policyWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a policy file and report every reload",
	Long: `Watch a policy file and report the result of every reload.

This runs the same reload logic as "churchctl server --watch" without
serving requests, which is useful while editing a policy.

Example:
  churchctl policy watch /etc/church/policy.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchPolicy(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch policy: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyWatchCmd)
}

func watchPolicy(filename string) error {
	logger := cliLogger()
	holder := policy.NewHolder(nil)

	watcher := policy.NewWatcher(filename, holder,
		policy.WithLogger(logger),
		policy.WithServiceOptions(permission.WithDiagnostics(diagnostics.Zap(logger))),
		policy.WithReloadHook(func(snap *policy.Snapshot, err error) {
			now := time.Now().Format(time.RFC3339)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[%s] Error loading policy: %v\n", now, err)
				return
			}
			fmt.Printf("[%s] Policy loaded (sha256: %s)\n", now, snap.SHA256)
		}),
	)

	if _, err := watcher.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for policy changes\n", filename)
	if err := watcher.Run(ctx); err != nil {
		return err
	}
	fmt.Println("\nShutting down...")
	return nil
}
