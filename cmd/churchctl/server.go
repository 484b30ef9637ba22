package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/config"
	"github.com/miguelmarques1/church-web/pkg/db"
	"github.com/miguelmarques1/church-web/pkg/diagnostics"
	"github.com/miguelmarques1/church-web/pkg/logging"
	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/policy"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/endpoints"
	gormstore "github.com/miguelmarques1/church-web/pkg/server/store/gorm"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the church-web authorization server",
	Long: `Run the church-web authorization server.

To run the server requires the environment variables CHURCH_TOKEN_SECRET
and DATABASE_URL.

Without a policy file the built-in policy is enforced. With --watch the
policy file is reloaded whenever it changes; a file that fails to parse
is reported and the previous policy stays in force.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		applyServerFlags(cmd, cfg)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if err := runServer(cfg, !noMigrate); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", 0, "server listen port (default: configured port)")
	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (default: configured address)")
	serverCmd.Flags().String("policy", "", "policy file (default: configured or built-in policy)")
	serverCmd.Flags().Bool("watch", false, "reload the policy file when it changes")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

// applyServerFlags overrides configuration with the flags that were set.
func applyServerFlags(cmd *cobra.Command, cfg *config.ChurchConfig) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("bind-address") {
		cfg.ListenAddress, _ = flags.GetString("bind-address")
	}
	if flags.Changed("policy") {
		cfg.PolicyPath, _ = flags.GetString("policy")
	}
	if flags.Changed("watch") {
		cfg.WatchPolicy, _ = flags.GetBool("watch")
	}
}

func runServer(cfg *config.ChurchConfig, migrate bool) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	key, err := cfg.SigningKey()
	if err != nil {
		return err
	}

	if migrate {
		logger.Info("Running database migrations")
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, db.Config{URL: cfg.DatabaseURL, Debug: cfg.LogLevel == "debug"})
	if err != nil {
		return err
	}

	auditLogger, closeAudit, err := newAuditLogger(cfg)
	if err != nil {
		return err
	}
	defer closeAudit()

	registry := prometheus.NewRegistry()
	gaps, err := diagnostics.Prometheus(registry)
	if err != nil {
		return err
	}
	diag := diagnostics.Multi(diagnostics.Zap(logger), diagnostics.Audit(auditLogger), gaps)

	holder := policy.NewHolder(nil)
	authenticator := authn.New(gormstore.NewUsersStore(database), key,
		authn.WithIssuer(cfg.TokenIssuer),
		authn.WithTTL(cfg.SessionTTL()))

	srv := server.NewServer(holder, authenticator, database, cfg.ListenAddress, strconv.Itoa(cfg.Port),
		server.WithAllowedOrigins(cfg.AllowedOrigins),
		server.WithAuditLogger(auditLogger),
		server.WithLogger(logger),
		server.WithRegistry(registry),
	)

	serviceOpts := []permission.Option{permission.WithDiagnostics(diag)}
	if cfg.PolicyPath == "" {
		if err := loadDefaultPolicy(holder, srv.PolicyStore, auditLogger, logger, serviceOpts); err != nil {
			return err
		}
	} else {
		watcher := policy.NewWatcher(cfg.PolicyPath, holder,
			policy.WithLogger(logger),
			policy.WithAuditLogger(auditLogger),
			policy.WithVersionRecorder(srv.PolicyStore),
			policy.WithServiceOptions(serviceOpts...),
		)
		if _, err := watcher.Load(); err != nil {
			return err
		}
		if cfg.WatchPolicy {
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Error("Policy watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	endpoints.RegisterAll(srv)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Running server", zap.String("address", srv.Addr()))
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newAuditLogger builds the audit logger, persisting messages when an audit
// database is configured.
func newAuditLogger(cfg *config.ChurchConfig) (*audit.Logger, func(), error) {
	opts := []audit.Option{audit.WithEnabled(cfg.AuditEnabled)}

	auditStore, err := audit.NewStore(cfg.AuditDatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	closeStore := func() {}
	if auditStore != nil {
		opts = append(opts, audit.WithStore(auditStore))
		closeStore = func() { _ = auditStore.Close() }
	}

	return audit.NewLogger(opts...), closeStore, nil
}

// loadDefaultPolicy publishes the built-in policy.
func loadDefaultPolicy(holder *policy.Holder, versions policy.VersionRecorder, auditLogger *audit.Logger, logger *zap.Logger, opts []permission.Option) error {
	doc := policy.Default()
	svc, err := doc.Build(opts...)
	if err != nil {
		return err
	}

	version := 0
	if versions != nil {
		if version, err = versions.RecordPolicyVersion(doc.Text(), doc.SHA256(), "default"); err != nil {
			logger.Warn("Failed to record policy version", zap.Error(err))
			version = 0
		}
	}

	holder.Store(&policy.Snapshot{
		Service:  svc,
		Source:   "default",
		SHA256:   doc.SHA256(),
		Version:  version,
		LoadedAt: time.Now(),
	})
	auditLogger.Log(audit.PolicyEvent{
		Source:    "default",
		SHA256:    doc.SHA256(),
		Version:   version,
		Operation: "load",
		Success:   true,
	})
	logger.Info("Using built-in policy", zap.String("sha256", doc.SHA256()))
	return nil
}
