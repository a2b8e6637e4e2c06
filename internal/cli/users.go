package cli

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"millionaire-service/internal/config"
)

// NewUsersCmd groups account maintenance commands.
func NewUsersCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage player accounts",
	}
	var revoke bool
	admin := &cobra.Command{
		Use:   "admin <email>",
		Short: "Grant (or with --revoke, remove) admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			if !b.persistent {
				return fmt.Errorf("users admin needs a database, set database.driver")
			}
			user, err := b.users.GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(args[0])))
			if err != nil {
				return fmt.Errorf("find %s: %w", args[0], err)
			}
			if err := b.admins.SetAdmin(cmd.Context(), user.ID, !revoke); err != nil {
				return err
			}
			log.Printf("user %d (%s) admin=%v", user.ID, user.Email, !revoke)
			return nil
		},
	}
	admin.Flags().BoolVar(&revoke, "revoke", false, "remove admin rights instead")
	cmd.AddCommand(admin)
	return cmd
}
