package command

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/alumnihub/internal/server/auth"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/services"
	"github.com/spf13/cobra"
)

func adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin account commands",
	}
	cmd.AddCommand(
		adminCreateCommand(),
	)
	return cmd
}

func adminCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create an admin account",
		Long: "Creates an admin account with the given username. The password is read\n" +
			"from the interactive prompt, or from the first line of stdin when it is not a terminal.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, logger, db, rm, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			passwd, err := prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			credentials := services.NewCredentialService(db, rm, auth.NewIssuer(cfg), cfg, logger)
			p, err := credentials.Create(cmd.Context(), models.KindAdmin, args[0], string(passwd))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", p.UserName, p.ID)
			return nil
		},
	}
}
