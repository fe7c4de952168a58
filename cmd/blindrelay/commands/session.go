package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blindrelay/internal/crypto"
	"blindrelay/internal/domain"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the relay session for this client",
	}
	cmd.AddCommand(sessionSetCmd(), sessionGenerateCmd())
	return cmd
}

// session set --client-id <id> --key <hex>: store a session issued by the operator.
func sessionSetCmd() *cobra.Command {
	var clientID, keyHex string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the client id and session key for the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return errNoPassphrase
			}
			key, err := domain.ParseSessionKey(keyHex)
			if err != nil {
				return fmt.Errorf("--key: %w", err)
			}
			session := domain.ClientSession{ClientID: domain.ClientID(clientID), Key: key}
			if err := wire.Sessions.SaveSession(passphrase, session); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session stored for %s.\n", clientID)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "client id registered at the relay")
	cmd.Flags().StringVar(&keyHex, "key", "", "session key, 64 hex characters")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// session generate --client-id <id>: create a key and print the relay config stanza.
func sessionGenerateCmd() *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create and store a fresh session key, printing it for the relay operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return errNoPassphrase
			}
			key, err := crypto.GenerateSessionKey(nil)
			if err != nil {
				return err
			}
			session := domain.ClientSession{ClientID: domain.ClientID(clientID), Key: key}
			if err := wire.Sessions.SaveSession(passphrase, session); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[[Clients]]\nID = %q\nSessionKey = %q\n", clientID, key.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "client id to register at the relay")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}
