package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/murmurhq/murmur/internal/client"
	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Send feedback to the operators",
}

var bugCmd = &cobra.Command{
	Use:   "bug <message>",
	Short: "Report a bug",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendFeedback("bug_report", args[0])
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <message>",
	Short: "Suggest a feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendFeedback("feature_suggestion", args[0])
	},
}

func init() {
	feedbackCmd.AddCommand(bugCmd)
	feedbackCmd.AddCommand(suggestCmd)
}

func sendFeedback(category, message string) error {
	api, err := requireAuth()
	if err != nil {
		return err
	}

	// Each feedback category has its own advisory window
	if remaining, err := state.CooldownRemaining(category); err == nil && remaining > 0 {
		return fmt.Errorf("feedback cooldown active - try again in %ds", remaining)
	}

	if err := api.SubmitFeedback(context.Background(), category, message); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "COOLDOWN_ACTIVE" {
			return fmt.Errorf("feedback cooldown active - try again in %ds", apiErr.RetryAfter)
		}
		return err
	}

	if err := state.StampAction(category); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record cooldown locally: %v\n", err)
	}

	fmt.Println("Thanks, feedback sent.")
	return nil
}
