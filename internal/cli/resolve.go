package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const resolveHandleFlag = "resolve-handle"

var errMissingHandle = errors.New("missing handle")

var resolveCmd = &cobra.Command{
	Use:     "resolve",
	Aliases: []string{"r"},
	Short:   "Resolve a handle to a DID",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		if strings.TrimSpace(viper.GetString(resolveHandleFlag)) == "" {
			return errMissingHandle
		}

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		did, err := e.resolver.ResolveHandle(cmd.Context(), viper.GetString(resolveHandleFlag))
		if err != nil {
			return err
		}

		fmt.Println(did)

		return nil
	},
}

func init() {
	resolveCmd.PersistentFlags().String(resolveHandleFlag, "", "Handle/username/domain to resolve")

	viper.AutomaticEnv()

	rootCmd.AddCommand(resolveCmd)
}
