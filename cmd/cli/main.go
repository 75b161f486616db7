package main

import (
	"fmt"
	"os"

	"github.com/murmurhq/murmur/internal/client"
	"github.com/spf13/cobra"
)

var (
	apiURL    string = "http://localhost:8686"
	statePath string

	state *client.State
)

var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "Murmur CLI - Share and browse anonymous thoughts",
	Long: `Murmur CLI provides command-line access to the murmur feed.
Sign in anonymously, browse thoughts, share your own, and report ones
that cross the line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := statePath
		if path == "" {
			var err error
			path, err = client.DefaultStatePath()
			if err != nil {
				return err
			}
		}

		var err error
		state, err = client.OpenState(path)
		if err != nil {
			return err
		}

		// A stored API URL wins over the default but not over the flag
		if !cmd.Flags().Changed("api") {
			if stored, err := state.Get(client.SettingAPIURL); err == nil && stored != "" {
				apiURL = stored
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if state != nil {
			state.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "Path to the local state database")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(themeCmd)
}

// apiClient builds a client with the stored token. Commands that require a
// session call requireAuth instead.
func apiClient() (*client.Client, error) {
	token, err := state.Get(client.SettingToken)
	if err != nil {
		return nil, err
	}
	return client.New(apiURL, token), nil
}

// requireAuth builds a client and fails when no session exists
func requireAuth() (*client.Client, error) {
	token, err := state.Get(client.SettingToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("not signed in - run 'murmur login' first")
	}
	return client.New(apiURL, token), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
