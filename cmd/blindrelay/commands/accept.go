package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"blindrelay/internal/domain"
)

// accept <unlock-key>: fetch and open an invitation.
func acceptCmd() *cobra.Command {
	var asText bool
	cmd := &cobra.Command{
		Use:   "accept <unlock-key>",
		Short: "Fetch and unlock an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := domain.ParseUnlockKey(args[0])
			if err != nil {
				return fmt.Errorf("unlock key: %w", err)
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			secret, err := a.Invitee.Accept(cmd.Context(), passphrase, k)
			if err != nil {
				return err
			}
			if asText {
				fmt.Fprintln(cmd.OutOrStdout(), string(secret))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(secret))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asText, "text", false, "print the secret as text instead of hex")
	return cmd
}
