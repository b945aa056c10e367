package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedctl/feedctl/internal/userdata"
)

const outFlag = "out"

var exportUserdataCmd = &cobra.Command{
	Use:     "export-userdata",
	Aliases: []string{"eu"},
	Short:   "Export all registry-held user data and classifier blobs",
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

		sink, err := userdata.NewDirSink(viper.GetString(outFlag))
		if err != nil {
			return err
		}

		return userdata.NewExporter(reg, e.log).Export(cmd.Context(), e.session, sink)
	},
}

func init() {
	exportUserdataCmd.PersistentFlags().String(outFlag, "feedctl-userdata", "Directory to export user data to")

	viper.AutomaticEnv()

	rootCmd.AddCommand(exportUserdataCmd)
}
