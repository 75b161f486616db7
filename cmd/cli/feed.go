package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/murmurhq/murmur/internal/client"
	"github.com/murmurhq/murmur/internal/feed"
	"github.com/spf13/cobra"
)

var (
	feedLimit  int
	feedFollow bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse the anonymous feed",
	Long: `Browse the feed newest-first. With --follow, press enter to load the
next page until the feed is exhausted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := requireAuth()
		if err != nil {
			return err
		}

		renderer := client.NewTerminalRenderer(os.Stdout, func(postID string) bool {
			reported, err := state.HasReported(postID)
			return err == nil && reported
		})

		paginator := feed.NewPaginator(api.FetchFeedPage, renderer, feedLimit)
		ctx := context.Background()

		if err := paginator.FetchNextPage(ctx); err != nil {
			return err
		}

		if !feedFollow {
			return nil
		}

		reader := bufio.NewReader(os.Stdin)
		for paginator.State() != feed.StateExhausted {
			fmt.Print("[enter: more, q: quit] ")
			line, err := reader.ReadString('\n')
			if err != nil || strings.TrimSpace(line) == "q" {
				return nil
			}
			if err := paginator.FetchNextPage(ctx); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	feedCmd.Flags().IntVar(&feedLimit, "limit", 0, "Page size (0 uses the server default)")
	feedCmd.Flags().BoolVar(&feedFollow, "follow", false, "Keep paging interactively")
}
