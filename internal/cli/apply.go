package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedctl/feedctl/internal/refs"
)

const (
	feedRkeyFlag       = "feed-rkey"
	feedClassifierFlag = "feed-classifier"
	pinnedPostFlag     = "pinned-post"
)

var applyCmd = &cobra.Command{
	Use:     "apply",
	Aliases: []string{"a"},
	Short:   "Create a feed or replace its classifier on the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		pin, err := refs.DecodePin(viper.GetString(pinnedPostFlag))
		if err != nil {
			return err
		}

		f, err := os.Open(viper.GetString(feedClassifierFlag))
		if err != nil {
			return err
		}
		defer f.Close()

		rkey := viper.GetString(feedRkeyFlag)

		if err := e.controller.Refresh(cmd.Context()); err != nil {
			return err
		}

		if _, exists := findFeed(e.controller.Feeds(), rkey); exists {
			return e.controller.ReplaceClassifier(cmd.Context(), rkey, f, pin)
		}
		return e.controller.Create(cmd.Context(), rkey, f, pin)
	},
}

func init() {
	applyCmd.PersistentFlags().String(feedRkeyFlag, "trending", "Machine-readable key for the feed")
	applyCmd.PersistentFlags().String(feedClassifierFlag, "local-trending-latest.scale", "Path to the feed classifier to upload")
	applyCmd.PersistentFlags().String(pinnedPostFlag, "", "URL of the post to pin to the top of the feed (empty clears the pin)")

	viper.AutomaticEnv()

	rootCmd.AddCommand(applyCmd)
}
