package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedctl/feedctl/internal/refs"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Update the pinned post of a feed without re-uploading the classifier",
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

		return e.controller.PatchPin(cmd.Context(), viper.GetString(feedRkeyFlag), pin)
	},
}

func init() {
	pinCmd.PersistentFlags().String(feedRkeyFlag, "trending", "Machine-readable key for the feed")
	pinCmd.PersistentFlags().String(pinnedPostFlag, "", "URL of the post to pin to the top of the feed (empty clears the pin)")

	viper.AutomaticEnv()

	rootCmd.AddCommand(pinCmd)
}
