package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/ledger/internal/audit"
	"github.com/mrlokans/ledger/internal/config"
	"github.com/mrlokans/ledger/internal/database"
	auditRepo "github.com/mrlokans/ledger/internal/database/audit"
	"github.com/mrlokans/ledger/internal/database/banks"
	http_controllers "github.com/mrlokans/ledger/internal/http"
	"github.com/mrlokans/ledger/internal/scheduler"
)

// Serve runs handler on ln until ctx is done, then shuts the server down,
// giving in-flight requests up to timeout to finish.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, timeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("Starting server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Dur("timeout", timeout).Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Run serves the API and the bank cleanup scheduler until ctx is cancelled.
// The database comes from the shared provider.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	log.Info().Str("version", version).Str("env", string(cfg.App.Env)).Msg("Starting ledger")

	provider := database.SharedProvider(cfg.Database)
	db, err := provider.Get()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database: db,
		Source:   provider,
		Version:  version,
	})

	recorder := audit.NewRecorder(auditRepo.NewRepository(db.DB), audit.SourceScheduler)
	cleanup := scheduler.NewBankCleanupScheduler(banks.NewRepository(db.DB), cfg.BankCleanup).WithRecorder(recorder)

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return Serve(gctx, ln, router, timeout)
	})
	g.Go(func() error {
		if err := cleanup.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		cleanup.Stop()
		return nil
	})

	err = g.Wait()
	log.Info().Msg("Server exiting")
	return err
}
