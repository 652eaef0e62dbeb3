package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"dayboard/internal/auth"
	"dayboard/internal/config"
	"dayboard/internal/linkui"
	"dayboard/internal/model"
	"dayboard/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Authorize Google access for a user and store the credential",
	RunE:  runLink,
}

func init() {
	linkCmd.Flags().StringP("user", "u", "", "User id the credential belongs to")
	linkCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer st.Close()

	oauthCfg := cfg.OAuth2(auth.Scopes...)
	var noRefresh bool
	grant := func(ctx context.Context, urls chan<- string, pasted <-chan string) error {
		tok, err := auth.Grant(ctx, oauthCfg, urls, pasted)
		if err != nil {
			return err
		}
		noRefresh = tok.RefreshToken == ""
		c := auth.CredentialFromToken(userID, model.ProviderGoogle, tok, time.Now())
		return st.Upsert(ctx, c)
	}

	m := linkui.New(cmd.Context(), userID, grant, auth.OpenBrowser)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run prompt: %w", err)
	}
	if m.Err != nil {
		return m.Err
	}
	fmt.Fprintf(os.Stdout, "Linked Google account for %s.\n", userID)
	if noRefresh {
		fmt.Fprintln(os.Stderr, "Warning: no refresh token was issued; the link will stop working when the access token expires.")
	}
	return nil
}
