package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recolord",
	Short: "Conversational image recoloring service",
	Long: `recolord recolors images through conversation.

Upload an image, then pick a palette any way you like: paste hex codes,
describe a mood ("a sunset palette"), extract the dominant colors from the
image itself, fetch a harmonious palette, or riff on the current one
("warmer", "bolder"). Once an image and a palette are both in place, the
recoloring model repaints the image in those colors.

Run 'recolord serve' to expose the HTTP and websocket API, or
'recolord chat' for a local terminal session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}
