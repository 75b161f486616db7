package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/murmurhq/murmur/internal/client"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <post-id>",
	Short: "Report a post",
	Long: `Report a post. Each identity counts at most once per post; reporting
the same post again is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID := args[0]

		// Skip the round trip when we already know the answer. The server
		// enforces idempotence regardless.
		if reported, err := state.HasReported(postID); err == nil && reported {
			fmt.Println("You already reported this post.")
			return nil
		}

		api, err := requireAuth()
		if err != nil {
			return err
		}

		report, err := api.ReportPost(context.Background(), postID)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				switch apiErr.Code {
				case "ALREADY_REPORTED":
					// Local state was out of date; repair it
					_ = state.MarkReported(postID)
					fmt.Println("You already reported this post.")
					return nil
				case "NOT_FOUND":
					return fmt.Errorf("post not found")
				}
			}
			return err
		}

		if err := state.MarkReported(postID); err != nil {
			return err
		}

		if report.Hidden {
			fmt.Println("Reported. The post has been hidden from the feed.")
		} else {
			fmt.Println("Reported.")
		}
		return nil
	},
}
