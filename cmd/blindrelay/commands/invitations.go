package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"blindrelay/internal/domain"
)

// invitations: list invitations sent from this client.
func invitationsCmd() *cobra.Command {
	var forget string
	cmd := &cobra.Command{
		Use:   "invitations",
		Short: "List invitations sent from this client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if forget != "" {
				id, err := domain.ParseInvitationID(forget)
				if err != nil {
					return fmt.Errorf("--forget: %w", err)
				}
				ok, err := a.Inviter.Forget(passphrase, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no recorded invitation %s", forget)
				}
				fmt.Fprintf(out, "Forgot %s\n", forget)
				return nil
			}

			pending, err := a.Inviter.Pending(passphrase)
			if err != nil {
				return err
			}
			for _, p := range pending {
				created := time.Unix(p.CreatedUTC, 0).UTC().Format(time.RFC3339)
				fmt.Fprintf(out, "%s  %s  %s\n", created, p.ID, p.UnlockKey.Hex())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&forget, "forget", "", "drop the recorded invitation with this id")
	return cmd
}
