package main

import (
	"fmt"
	"time"

	"dayboard/internal/api"
	"dayboard/internal/config"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Print a signed session token for a user",
	RunE:  runSession,
}

func init() {
	sessionCmd.Flags().StringP("user", "u", "", "User id to put in the token")
	sessionCmd.Flags().Duration("ttl", 0, "Token lifetime (default SESSION_TTL)")
	sessionCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = cfg.SessionTTL
	}

	tok, err := api.IssueSession([]byte(cfg.SessionSecret), userID, ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
