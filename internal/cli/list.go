package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const sortByTitleFlag = "sort-by-title"

type feedListing struct {
	Rkey        string `yaml:"rkey"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	PinnedPost  string `yaml:"pinnedPost,omitempty"`
}

type feedListings struct {
	Published   []feedListing `yaml:"published"`
	Unpublished []feedListing `yaml:"unpublished"`
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List feeds, split into published and unpublished",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		e.controller.SetSortByTitle(viper.GetBool(sortByTitleFlag))

		if err := e.controller.Refresh(cmd.Context()); err != nil {
			return err
		}

		lists := e.controller.Feeds()

		out := feedListings{}
		for _, f := range lists.Published {
			out.Published = append(out.Published, feedListing{
				Rkey:        f.Rkey,
				Title:       f.Title,
				Description: f.Description,
				PinnedPost:  f.PinnedPostURL,
			})
		}
		for _, f := range lists.Unpublished {
			out.Unpublished = append(out.Unpublished, feedListing{
				Rkey:       f.Rkey,
				PinnedPost: f.PinnedPostURL,
			})
		}

		return yaml.NewEncoder(os.Stdout).Encode(out)
	},
}

func init() {
	listCmd.PersistentFlags().Bool(sortByTitleFlag, false, "Sort published feeds alphabetically by title instead of registry order")

	viper.AutomaticEnv()

	rootCmd.AddCommand(listCmd)
}
