package commands

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const defaultSecretSize = 32

// invite [--secret hex | --message text]: seal a secret and submit it.
func inviteCmd() *cobra.Command {
	var secretHex, message string
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Seal a secret for an invitee and submit it to the relay",
		Long: "Seal a secret for an invitee and submit it to the relay.\n" +
			"Without --secret or --message a random 32 byte secret is used.\n" +
			"Share the printed unlock key with the invitee out of band.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secretHex != "" && message != "" {
				return errors.New("use only one of --secret and --message")
			}
			a, err := openApp()
			if err != nil {
				return err
			}

			var secret []byte
			switch {
			case secretHex != "":
				if secret, err = hex.DecodeString(secretHex); err != nil {
					return fmt.Errorf("--secret: %w", err)
				}
			case message != "":
				secret = []byte(message)
			default:
				secret = make([]byte, defaultSecretSize)
				if _, err := rand.Read(secret); err != nil {
					return err
				}
			}

			k, id, err := a.Inviter.Send(cmd.Context(), passphrase, secret)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Invitation: %s\n", id)
			fmt.Fprintf(out, "Unlock key: %s\n", k.Hex())
			fmt.Fprintf(out, "Secret:     %s\n", hex.EncodeToString(secret))
			return nil
		},
	}
	cmd.Flags().StringVar(&secretHex, "secret", "", "secret to share, hex encoded")
	cmd.Flags().StringVar(&message, "message", "", "secret to share, as text")
	return cmd
}
