package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/shiftplan-api/pkg/auth"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen <userID>",
	Short: "Print a signed API key for userID",
	Long: `Print an HMAC-signed API key using API_MASTER_SECRET.

The key is recorded the first time it is used against the API.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if cfg.Auth.MasterSecret == "" {
		return errors.New("API_MASTER_SECRET is not set")
	}
	svc := &auth.Service{MasterSecret: []byte(cfg.Auth.MasterSecret)}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated Key for %s:\n%s\n", args[0], svc.GenerateHMACKey(args[0]))
	return nil
}
