package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/murmurhq/murmur/internal/client"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post [content]",
	Short: "Share an anonymous thought",
	Long: `Share an anonymous thought. Content comes from the argument, or from
stdin when no argument is given. The server enforces the length limits
and the posting cooldown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := requireAuth()
		if err != nil {
			return err
		}

		var content string
		if len(args) == 1 {
			content = args[0]
		} else {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			content = string(raw)
		}

		content = strings.TrimSpace(content)
		if content == "" {
			return fmt.Errorf("nothing to post")
		}

		// Local advisory check first; the server still decides
		if remaining, err := state.CooldownRemaining(client.CategoryPost); err == nil && remaining > 0 {
			return fmt.Errorf("you're posting too fast - try again in %ds", remaining)
		}

		post, err := api.CreatePost(context.Background(), content)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Code == "COOLDOWN_ACTIVE" {
				return fmt.Errorf("you're posting too fast - try again in %ds", apiErr.RetryAfter)
			}
			return err
		}

		if err := state.StampAction(client.CategoryPost); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record cooldown locally: %v\n", err)
		}

		fmt.Printf("Shared. (%s)\n", post.ID)
		return nil
	},
}
