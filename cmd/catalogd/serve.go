package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront/catalog-api/internal/api"
	"github.com/storefront/catalog-api/internal/core/service"
	"github.com/storefront/catalog-api/internal/infrastructure/queue"
	"github.com/storefront/catalog-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := openStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := st.close(closeCtx); err != nil {
					log.Warn().Err(err).Msg("closing stores")
				}
			}()

			auditLog := logger.Component("audit")
			dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(st.audit, auditLog), auditLog)
			dispatcher.Start(ctx)

			svc, err := newServices(cfg, st, dispatcher)
			if err != nil {
				return err
			}
			if err := svc.roles.EnsureSystemRoles(ctx); err != nil {
				return fmt.Errorf("seed system roles: %w", err)
			}

			e := api.NewRouter(api.Dependencies{
				Log:           logger.Component("http"),
				Identity:      svc.identity,
				Auth:          svc.auth,
				Roles:         svc.roles,
				Catalog:       svc.catalog,
				Readiness:     st.readiness,
				AuthRateLimit: cfg.HTTP.AuthRateLimit,
				AuthRateBurst: cfg.HTTP.AuthRateBurst,
				CORSOrigins:   cfg.HTTP.CORSOrigins,
				AdminRole:     cfg.Auth.AdminRole,
			})

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("http server listening")
				if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			return nil
		},
	}
}
