package main

import (
	"fmt"

	"github.com/murmurhq/murmur/internal/client"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the display theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			theme, err := state.Get(client.SettingTheme)
			if err != nil {
				return err
			}
			if theme == "" {
				theme = "light"
			}
			fmt.Println(theme)
			return nil
		}

		theme := args[0]
		if theme != "light" && theme != "dark" {
			return fmt.Errorf("theme must be light or dark")
		}
		if err := state.Set(client.SettingTheme, theme); err != nil {
			return err
		}
		fmt.Printf("Theme set to %s\n", theme)
		return nil
	},
}
