package main

import (
	"fmt"

	"github.com/dom/personal-blog/internal/service"
	"github.com/spf13/cobra"
)

func newSessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Short:   "Manage login sessions",
		Aliases: []string{"session"},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete sessions that have expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth := service.NewAuthService(a.repos.User, a.repos.Session, nil, a.cfg)
			removed, err := auth.PurgeExpiredSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("purge sessions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
			return nil
		},
	})
	return cmd
}
