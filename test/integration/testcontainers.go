package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/policy"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/endpoints"
	gormstore "github.com/miguelmarques1/church-web/pkg/server/store/gorm"
)

const (
	// tokenSecret signs tokens in both server modes.
	tokenSecret = "integration-test-token-secret-0123456789"
	serverPort  = "18080"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB            *gorm.DB
	RawDB         *sql.DB
	Container     testcontainers.Container
	ServerURL     string
	DatabaseURL   string
	HTTPClient    *http.Client
	Cancel        context.CancelFunc
	ServerProcess *exec.Cmd
	InlineServer  *server.Server // For inline mode
}

// NewTestContext starts postgres in a container, applies the migrations and
// starts a church-web server against it.
//
// Set CHURCH_BINARY to the path of a churchctl binary to test the real
// command, or CHURCH_INLINE=1 to run the server in-process.
func NewTestContext(ctx context.Context) (tc *TestContext, err error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}

	inlineMode := os.Getenv("CHURCH_INLINE") == "1"
	binaryPath := os.Getenv("CHURCH_BINARY")
	switch {
	case inlineMode:
		log.Println("Using inline server mode")
	case binaryPath == "":
		return nil, fmt.Errorf("either CHURCH_BINARY or CHURCH_INLINE=1 is required:\n" +
			"  go build -o churchctl ./cmd/churchctl && INTEGRATION_TEST=1 CHURCH_BINARY=$(pwd)/churchctl go test ./test/integration/...\n" +
			"  INTEGRATION_TEST=1 CHURCH_INLINE=1 go test ./test/integration/...")
	default:
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("CHURCH_BINARY: %w", err)
		}
		log.Printf("Using binary: %s", binaryPath)
	}

	tc = &TestContext{
		ServerURL:  "http://127.0.0.1:" + serverPort,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	defer func() {
		if err != nil {
			tc.Close(ctx)
			tc = nil
		}
	}()

	if err = tc.startPostgres(ctx); err != nil {
		return tc, err
	}
	if err = runMigrations(tc.RawDB, filepath.Join(projectRoot, "db", "migrations")); err != nil {
		return tc, fmt.Errorf("failed to run migrations: %w", err)
	}

	if inlineMode {
		tc.InlineServer, tc.Cancel, err = startInlineServer(tc.DB, serverPort)
	} else {
		tc.ServerProcess, tc.Cancel, err = startBinary(binaryPath, tc.DatabaseURL, serverPort)
	}
	if err != nil {
		return tc, fmt.Errorf("failed to start server: %w", err)
	}

	if err = waitForServer(tc.ServerURL, 30*time.Second); err != nil {
		return tc, fmt.Errorf("server failed to become ready: %w", err)
	}
	return tc, nil
}

// startPostgres runs the postgres container and opens DB and RawDB on it.
func (tc *TestContext) startPostgres(ctx context.Context) error {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("church_test"),
		tcpostgres.WithUsername("church"),
		tcpostgres.WithPassword("church"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.Container = container

	tc.DatabaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}

	tc.DB, err = gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  tc.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	tc.RawDB, err = tc.DB.DB()
	return err
}

// startInlineServer starts the server in-process with the built-in policy
func startInlineServer(db *gorm.DB, port string) (*server.Server, context.CancelFunc, error) {
	doc := policy.Default()
	svc, err := doc.Build()
	if err != nil {
		return nil, nil, err
	}
	holder := policy.NewHolder(&policy.Snapshot{
		Service:  svc,
		Source:   "default",
		SHA256:   doc.SHA256(),
		LoadedAt: time.Now(),
	})

	authenticator := authn.New(gormstore.NewUsersStore(db), []byte(tokenSecret))
	s := server.NewServer(holder, authenticator, db, "127.0.0.1", port, server.WithAccessLog(os.Stdout))

	version, err := s.PolicyStore.RecordPolicyVersion(doc.Text(), doc.SHA256(), "default")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record policy version: %w", err)
	}
	snap := *holder.Current()
	snap.Version = version
	holder.Store(&snap)

	endpoints.RegisterAll(s)

	go func() {
		_ = s.Start()
	}()

	cancel := func() {
		ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = s.Shutdown(ctx)
	}
	return s, cancel, nil
}

// startBinary starts the churchctl server binary
func startBinary(binaryPath, dbURL string, port string) (*exec.Cmd, context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Use --no-migrate since we already ran migrations in the test setup
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", port)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"CHURCH_TOKEN_SECRET="+tokenSecret,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to start binary: %w", err)
	}

	return cmd, cancel, nil
}

// waitForServer polls /status until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/status")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close stops the server and the container. It is safe on a partially
// started context.
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Cancel != nil {
		tc.Cancel()
	}
	if tc.ServerProcess != nil && tc.ServerProcess.Process != nil {
		_ = tc.ServerProcess.Process.Kill()
		_ = tc.ServerProcess.Wait()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations executes the up migrations in version order
func runMigrations(db *sql.DB, migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s: %w", filepath.Base(file), err)
		}
	}

	return nil
}
