package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/miguelmarques1/church-web/pkg/config"
	"github.com/miguelmarques1/church-web/pkg/diagnostics"
	"github.com/miguelmarques1/church-web/pkg/logging"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/policy"
)

// anonymousRole is the command line spelling of an unauthenticated caller.
const anonymousRole = "-"

// roleArg maps the command line role to the role the service expects.
func roleArg(arg string) string {
	if arg == anonymousRole {
		return ""
	}
	return arg
}

// policyPath returns the --policy flag, falling back to the configured
// policy path. An empty result selects the built-in policy.
func policyPath(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg, err := config.Load(); err == nil {
		return cfg.PolicyPath
	}
	return os.Getenv("CHURCH_POLICY_PATH")
}

// loadDocument reads the policy at path, or the built-in policy when path
// is empty.
func loadDocument(path string) (*policy.Document, error) {
	if path == "" {
		return policy.Default(), nil
	}
	return policy.Load(path)
}

// loadService builds a permission service for one-shot commands. Gaps are
// logged to stderr.
func loadService(path string) (*permission.Service, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Build(permission.WithDiagnostics(diagnostics.Zap(cliLogger())))
}

// cliLogger returns a warn level logger for one-shot commands.
func cliLogger() *zap.Logger {
	logger, err := logging.New("warn")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// requireSubcommand is the Run of a command that only groups subcommands.
func requireSubcommand(cmd *cobra.Command, args []string) {
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	fmt.Printf("error: Command '%s' requires a subcommand (%s)\n\n", cmd.Name(), strings.Join(names, ", "))
	_ = cmd.Help()
	os.Exit(1)
}
