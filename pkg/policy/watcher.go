package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/permission"
)

// VersionRecorder stores every successfully loaded policy document and
// returns its version number.
type VersionRecorder interface {
	RecordPolicyVersion(text, sha256, source string) (int, error)
}

// Watcher loads the policy file into a Holder and reloads it on change.
type Watcher struct {
	path        string
	holder      *Holder
	logger      *zap.Logger
	audit       *audit.Logger
	versions    VersionRecorder
	serviceOpts []permission.Option
	onReload    func(*Snapshot, error)
	now         func() time.Time
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the operational logger.
func WithLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger }
}

// WithAuditLogger records a PolicyEvent for every load attempt.
func WithAuditLogger(logger *audit.Logger) WatcherOption {
	return func(w *Watcher) { w.audit = logger }
}

// WithVersionRecorder stores each loaded document.
func WithVersionRecorder(r VersionRecorder) WatcherOption {
	return func(w *Watcher) { w.versions = r }
}

// WithServiceOptions are passed to every service the watcher builds.
func WithServiceOptions(opts ...permission.Option) WatcherOption {
	return func(w *Watcher) { w.serviceOpts = append(w.serviceOpts, opts...) }
}

// WithReloadHook is called after every load attempt, from the goroutine
// running the watcher. The error is nil on success.
func WithReloadHook(fn func(*Snapshot, error)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher creates a watcher for the policy file at path.
func NewWatcher(path string, holder *Holder, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:   filepath.Clean(path),
		holder: holder,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load reads the policy file and publishes it. It is used once at startup,
// before Run.
func (w *Watcher) Load() (*Snapshot, error) {
	return w.apply("load")
}

// Reload reads the policy file again and publishes it if it parses. An
// unchanged document keeps the current snapshot.
func (w *Watcher) Reload() (*Snapshot, error) {
	return w.apply("reload")
}

// Run watches the policy file until ctx is cancelled. The parent directory is
// watched so that editors replacing the file by rename are followed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", w.path, err)
	}

	w.logger.Info("Watching policy file", zap.String("path", w.path))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("Policy file modified", zap.String("op", event.Op.String()))
				_, _ = w.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		case <-ctx.Done():
			w.logger.Info("Stopped watching policy file", zap.String("path", w.path))
			return nil
		}
	}
}

func (w *Watcher) apply(operation string) (snap *Snapshot, err error) {
	defer func() {
		if w.onReload != nil {
			w.onReload(snap, err)
		}
	}()

	doc, err := Load(w.path)
	if err != nil {
		w.fail(operation, "", err)
		return nil, err
	}

	sha := doc.SHA256()
	if current := w.holder.Current(); operation == "reload" && current != nil && current.SHA256 == sha {
		w.logger.Debug("Policy unchanged", zap.String("sha256", sha))
		return current, nil
	}

	svc, err := doc.Build(w.serviceOpts...)
	if err != nil {
		w.fail(operation, sha, err)
		return nil, err
	}

	for _, gap := range doc.Validate() {
		w.logger.Warn("Policy leaves a permission undefined", zap.String("detail", gap.String()))
	}

	version := 0
	if w.versions != nil {
		version, err = w.versions.RecordPolicyVersion(doc.Text(), sha, w.path)
		if err != nil {
			// Version history is best effort.
			w.logger.Warn("Failed to record policy version", zap.Error(err))
			version, err = 0, nil
		}
	}

	snap = &Snapshot{
		Service:  svc,
		Source:   w.path,
		SHA256:   sha,
		Version:  version,
		LoadedAt: w.now(),
	}
	w.holder.Store(snap)

	w.audit.Log(audit.PolicyEvent{
		Source:    w.path,
		SHA256:    sha,
		Version:   version,
		Operation: operation,
		Success:   true,
	})
	w.logger.Info("Policy loaded",
		zap.String("operation", operation),
		zap.String("sha256", sha),
		zap.Int("version", version))
	return snap, nil
}

func (w *Watcher) fail(operation, sha string, err error) {
	w.audit.Log(audit.PolicyEvent{
		Source:       w.path,
		SHA256:       sha,
		Operation:    operation,
		ErrorMessage: err.Error(),
	})
	w.logger.Error("Failed to load policy, keeping previous policy",
		zap.String("operation", operation),
		zap.Error(err))
}
