package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedctl/feedctl/internal/userdata"
)

var deleteUserdataCmd = &cobra.Command{
	Use:     "delete-userdata",
	Aliases: []string{"du"},
	Short:   "Delete all registry-held user data and log out",
	Long: `Delete all registry-held user data and log out.

Published records in the account repository are not touched; unpublish or
delete feeds individually first if they should go too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		reg, err := e.session.RegistryClient(viper.GetString(registryURLFlag))
		if err != nil {
			return err
		}

		return userdata.NewExporter(reg, e.log).Delete(cmd.Context(), e.bridge.Logout)
	},
}

func init() {
	viper.AutomaticEnv()

	rootCmd.AddCommand(deleteUserdataCmd)
}
