package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var unpublishCmd = &cobra.Command{
	Use:     "unpublish",
	Aliases: []string{"u"},
	Short:   "Unpublish a feed from the Bluesky PDS, keeping the registry draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		return e.controller.Unpublish(cmd.Context(), viper.GetString(feedRkeyFlag))
	},
}

func init() {
	unpublishCmd.PersistentFlags().String(feedRkeyFlag, "trending", "Machine-readable key for the feed")

	viper.AutomaticEnv()

	rootCmd.AddCommand(unpublishCmd)
}
