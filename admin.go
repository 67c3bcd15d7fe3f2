package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zachkp/design-portfolio/internal/auth"
	"github.com/Zachkp/design-portfolio/internal/config"
	"github.com/Zachkp/design-portfolio/internal/domain"
)

var (
	adminEmailFlag    string
	adminPasswordFlag string
)

// newCreateAdminCmd registers an admin account directly in the database, for sites
// where sign-up from the login page is disabled.
func newCreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: `create-admin stores a new admin account in the configured database.

The password may be given with --password or the ADMIN_PASSWORD env variable.`,
		RunE: createAdmin,
	}
	cmd.Flags().StringVar(&adminEmailFlag, "email", "", "Email of the new account")
	cmd.Flags().StringVar(&adminPasswordFlag, "password", "", "Password of the new account (ADMIN_PASSWORD)")
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func createAdmin(cmd *cobra.Command, _ []string) error {
	if adminEmailFlag == "" {
		return errors.New("--email is required")
	}
	password := adminPasswordFlag
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	svc := auth.NewService(repos.users, auth.NewMemoryTokenStore(cfg.SessionTTL), auth.NewBroker(), auth.Options{}, log)
	user, err := svc.Register(ctx, adminEmailFlag, password)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("an account for %s already exists", adminEmailFlag)
		}
		return fmt.Errorf("failed to create admin: %s", domain.UserMessage(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created admin account %s (%s)\n", user.Email, user.ID)
	return nil
}
