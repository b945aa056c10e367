package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	feedNameFlag        = "feed-name"
	feedDescriptionFlag = "feed-description"
)

var publishCmd = &cobra.Command{
	Use:     "publish",
	Aliases: []string{"p"},
	Short:   "Publish a feed to the Bluesky PDS (or refresh it if already published)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		if err := e.controller.Refresh(cmd.Context()); err != nil {
			return err
		}

		var (
			rkey         = viper.GetString(feedRkeyFlag)
			generatorDID = viper.GetString(feedGeneratorDIDFlag)
			name         = viper.GetString(feedNameFlag)
			description  = viper.GetString(feedDescriptionFlag)
		)

		for _, f := range e.controller.Feeds().Published {
			if f.Rkey == rkey {
				return e.controller.Republish(cmd.Context(), generatorDID, rkey, name, description)
			}
		}
		return e.controller.Finalize(cmd.Context(), generatorDID, rkey, name, description)
	},
}

func init() {
	publishCmd.PersistentFlags().String(feedRkeyFlag, "trending", "Machine-readable key for the feed")
	publishCmd.PersistentFlags().String(feedNameFlag, "Trending", "Human-readable name for the feed")
	publishCmd.PersistentFlags().String(feedDescriptionFlag, "", "Description for the feed")
	publishCmd.PersistentFlags().String(feedGeneratorDIDFlag, "did:web:feeds.example.com", "DID of the feed generator (typically the hostname of the publicly reachable URL)")

	viper.AutomaticEnv()

	rootCmd.AddCommand(publishCmd)
}
