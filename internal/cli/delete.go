package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"d"},
	Short:   "Delete a feed: unpublish it if needed, then remove it from the registry",
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

		return e.controller.Delete(cmd.Context(), viper.GetString(feedRkeyFlag))
	},
}

func init() {
	deleteCmd.PersistentFlags().String(feedRkeyFlag, "trending", "Machine-readable key for the feed")

	viper.AutomaticEnv()

	rootCmd.AddCommand(deleteCmd)
}
