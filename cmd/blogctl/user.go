package main

import (
	"fmt"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Short:   "Manage user accounts",
		Aliases: []string{"users"},
	}
	cmd.AddCommand(newCreateAdminCmd(a))
	return cmd
}

func newCreateAdminCmd(a *app) *cobra.Command {
	var (
		username string
		email    string
		password string
		name     string
		super    bool
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.RoleAdmin
			if super {
				role = domain.RoleSuperAdmin
			}

			auth := service.NewAuthService(a.repos.User, a.repos.Session, nil, a.cfg)
			user, err := auth.CreateAdmin(cmd.Context(), service.RegisterInput{
				Name:     name,
				Username: username,
				Email:    email,
				Password: password,
			}, role)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			a.logger.Info("admin account created", "username", user.Username, "role", user.Role)
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the username)")
	cmd.Flags().BoolVar(&super, "super", false, "grant super_admin instead of admin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
