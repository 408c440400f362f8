package stubapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/logging"
	"github.com/dmitrijs2005/scholarhub/internal/shared"
	"github.com/dmitrijs2005/scholarhub/internal/stubapi/config"
)

// DemoAccounts are created by App when seeding is enabled. Both use the
// password "password".
var DemoAccounts = []models.UserSummary{
	{Name: "Demo Admin", Email: "admin@example.org", Role: models.RoleAdmin},
	{Name: "Demo User", Email: "user@example.org", Role: models.RoleUser, City: "Riga"},
}

const demoPassword = "password"

// App runs a Server over HTTP until its context is cancelled or the process
// receives SIGINT/SIGTERM/SIGQUIT.
type App struct {
	config *config.Config
	logger logging.Logger
	server *Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	secret := c.SecretKey
	if secret == "" {
		s, err := shared.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		secret = s
		logger.Warn(context.Background(), "no secret key configured, tokens will not survive a restart")
	}

	srv := New([]byte(secret), c.TokenTTL)
	if c.Seed {
		for _, u := range DemoAccounts {
			if _, err := srv.AddUser(u, demoPassword); err != nil {
				return nil, fmt.Errorf("seed %s: %w", u.Email, err)
			}
		}
		logger.Info(context.Background(), "demo accounts created", "count", len(DemoAccounts))
	}

	return &App{config: c, logger: logger.With("module", "stubapi"), server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run listens on the configured address and blocks until shutdown.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	listen, err := net.Listen("tcp", app.config.EndpointAddr)
	if err != nil {
		return err
	}
	return app.serve(ctx, listen)
}

func (app *App) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           app.server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
