package server

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/driveguard/driveguard/internal/config"
	"github.com/driveguard/driveguard/internal/drive"
	"github.com/driveguard/driveguard/internal/google"
	"github.com/driveguard/driveguard/internal/instrumentation"
	"github.com/driveguard/driveguard/internal/logging"
	"github.com/driveguard/driveguard/internal/scope"
)

// Authenticator is the OAuth surface the server consumes: building consent
// URLs, exchanging codes, and producing authenticated HTTP clients.
// *google.Authenticator satisfies it.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	google.TokenProvider
}

// ServerContext holds the shared dependencies of the API server: the
// configuration, the authenticator, and the lazily constructed Drive client
// with its scope guard and upload resolver.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     config.Config
	auth    Authenticator
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger

	mu          sync.RWMutex
	driveClient *drive.Client
	guard       *scope.Guard
	resolver    *scope.Resolver
	shutdown    bool
}

// NewServerContext creates a new server context. The Drive client is created
// lazily on first use so the server can start before the auth flow has run.
func NewServerContext(ctx context.Context, cfg config.Config, auth Authenticator, logger *slog.Logger, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) (*ServerContext, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	if audit == nil {
		audit = instrumentation.NewAuditLogger(logger)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		auth:    auth,
		logger:  logger,
		metrics: metrics,
		audit:   audit,
	}

	// Eagerly build the Drive client when a token is already stored, but
	// don't fail startup: the client is re-attempted on first use.
	if auth != nil && auth.HasToken() {
		if err := sc.initDriveClient(shutdownCtx); err != nil {
			logger.Warn("failed to create Drive client at startup, will retry on first use",
				logging.Err(err))
		}
	}

	return sc, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the server configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Audit returns the audit logger.
func (sc *ServerContext) Audit() *instrumentation.AuditLogger {
	return sc.audit
}

// Auth returns the authenticator.
func (sc *ServerContext) Auth() Authenticator {
	return sc.auth
}

// initDriveClient builds the Drive client, scope guard, and upload resolver
// from the stored token. Caller must not hold sc.mu.
func (sc *ServerContext) initDriveClient(ctx context.Context) error {
	httpClient, err := sc.auth.HTTPClient(ctx)
	if err != nil {
		return err
	}

	client, err := drive.NewClient(ctx, httpClient, sc.logger)
	if err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.setClientsLocked(client)
	return nil
}

// setClientsLocked installs the Drive client and rebuilds the guard and
// resolver on top of it. Caller must hold sc.mu.
func (sc *ServerContext) setClientsLocked(client *drive.Client) {
	sc.driveClient = client
	sc.guard = scope.NewGuard(client, sc.cfg.Drive.RootFolderID, sc.logger)
	sc.resolver = scope.NewResolver(client, sc.logger)
}

// SetDriveClient installs a Drive client directly, rebuilding the scope
// guard and upload resolver on top of it.
func (sc *ServerContext) SetDriveClient(client *drive.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.setClientsLocked(client)
}

// DriveClient returns the Drive client, creating it from the stored token
// if needed. Returns an error when no token is available.
func (sc *ServerContext) DriveClient(ctx context.Context) (*drive.Client, error) {
	sc.mu.RLock()
	client := sc.driveClient
	sc.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	if err := sc.initDriveClient(ctx); err != nil {
		return nil, err
	}

	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.driveClient, nil
}

// Guard returns the folder scope guard, creating the Drive client first if
// needed.
func (sc *ServerContext) Guard(ctx context.Context) (*scope.Guard, error) {
	if _, err := sc.DriveClient(ctx); err != nil {
		return nil, err
	}
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.guard, nil
}

// Resolver returns the upload resolver, creating the Drive client first if
// needed.
func (sc *ServerContext) Resolver(ctx context.Context) (*scope.Resolver, error) {
	if _, err := sc.DriveClient(ctx); err != nil {
		return nil, err
	}
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.resolver, nil
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
