package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storefront/catalog-api/internal/core/ports"
	"github.com/storefront/catalog-api/internal/core/service"
)

func newCreateAdminCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a user holding the admin role",
		Long: "Create a user holding the admin role. The password is read from\n" +
			"--password or, when omitted, from the CATALOG_ADMIN_PASSWORD variable.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("CATALOG_ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or CATALOG_ADMIN_PASSWORD)")
			}

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

			user, err := svc.identity.CreateUser(ctx, ports.RegisterInput{
				Username: username,
				Email:    email,
				Password: password,
				Role:     cfg.Auth.AdminRole,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
