package main

import (
	"context"
	"fmt"

	"github.com/murmurhq/murmur/internal/client"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Create a fresh anonymous identity",
	Long: `Create a fresh anonymous identity on the server and store its token
locally. Any previous identity, including which posts it reported, is
discarded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := apiClient()
		if err != nil {
			return err
		}

		auth, err := api.SignInAnonymously(context.Background())
		if err != nil {
			return fmt.Errorf("sign-in failed: %w", err)
		}

		// The reported set belongs to the old identity
		if err := state.ClearIdentity(); err != nil {
			return err
		}
		if err := state.Set(client.SettingToken, auth.Token); err != nil {
			return err
		}
		if err := state.Set(client.SettingUserID, auth.UserID); err != nil {
			return err
		}
		if err := state.Set(client.SettingAPIURL, apiURL); err != nil {
			return err
		}

		// Remember the server's cooldown windows so the advisory checks
		// use the same numbers the limiter enforces. Best effort: without
		// them the built-in defaults apply.
		if cfg, err := api.GetConfig(context.Background()); err == nil {
			_ = state.SetCooldownWindow(client.CategoryPost, cfg.PostCooldownSeconds)
			_ = state.SetCooldownWindow(client.CategoryBugReport, cfg.FeedbackCooldownSeconds)
			_ = state.SetCooldownWindow(client.CategoryFeatureSuggestion, cfg.FeedbackCooldownSeconds)
		}

		fmt.Printf("Signed in anonymously as %s\n", auth.UserID)
		return nil
	},
}
