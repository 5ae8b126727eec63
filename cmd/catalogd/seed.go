package main

import (
	"github.com/spf13/cobra"

	"github.com/storefront/catalog-api/internal/core/service"
)

func newSeedRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Create the default and admin roles if they are missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			st, err := openStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = st.close(ctx) }()

			svc, err := newServices(cfg, st, service.NewAuditService(st.audit, log))
			if err != nil {
				return err
			}
			if err := svc.roles.EnsureSystemRoles(ctx); err != nil {
				return err
			}
			log.Info().Str("default", cfg.Auth.DefaultRole).Str("admin", cfg.Auth.AdminRole).Msg("system roles ready")
			return nil
		},
	}
}
