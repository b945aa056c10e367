// Package cli implements the feedctl command line interface. It is a thin
// collaborator over the core packages: it obtains a session once, derives the
// registry client from it, and calls the lifecycle controller's operations.
package cli

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedctl/feedctl/internal/feeds"
	"github.com/feedctl/feedctl/internal/logging"
	"github.com/feedctl/feedctl/internal/refs"
	"github.com/feedctl/feedctl/internal/session"
)

const (
	registryURLFlag = "registry-url"

	serviceFlag  = "service"
	handleFlag   = "handle"
	passwordFlag = "password"

	feedGeneratorDIDFlag = "feed-generator-did"
)

var rootCmd = &cobra.Command{
	Use:   "feedctl",
	Short: "Manage classifier-backed feeds on a registry and Bluesky PDSes",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix("feedctl")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

		return viper.BindPFlags(cmd.PersistentFlags())
	},
}

// newLogger builds the CLI's logger; level is raised to debug via
// FEEDCTL_VERBOSE.
func newLogger() logging.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// env is everything a subcommand needs after login: the bridge (for logout),
// the session, and the lifecycle controller wired to both backends.
type env struct {
	bridge     *session.Bridge
	session    *session.Session
	resolver   *refs.Resolver
	controller *feeds.Controller
	log        logging.Logger
}

// connect performs the once-per-invocation login and wires the core
// components together.
func connect(ctx context.Context) (*env, error) {
	log := newLogger()

	secret := viper.GetString(passwordFlag)
	if secret == "" {
		pw, err := readSecret(os.Stderr)
		if err != nil {
			return nil, err
		}
		secret = string(pw)
	}

	bridge := session.NewBridge(log)
	sess, err := bridge.Login(ctx, viper.GetString(handleFlag), secret, viper.GetString(serviceFlag))
	if err != nil {
		return nil, err
	}

	reg, err := sess.RegistryClient(viper.GetString(registryURLFlag))
	if err != nil {
		return nil, err
	}

	resolver := refs.NewResolver(sess.Network)

	return &env{
		bridge:     bridge,
		session:    sess,
		resolver:   resolver,
		controller: feeds.NewController(reg, sess.Network, resolver, sess.DID, log),
		log:        log,
	}, nil
}

// findFeed looks up rkey in either partition.
func findFeed(lists feeds.Lists, rkey string) (feeds.Feed, bool) {
	for _, f := range lists.Published {
		if f.Rkey == rkey {
			return f, true
		}
	}
	for _, f := range lists.Unpublished {
		if f.Rkey == rkey {
			return f, true
		}
	}
	return feeds.Feed{}, false
}

func Execute() error {
	rootCmd.PersistentFlags().String(registryURLFlag, "http://localhost:1337", "Feed registry URL")

	rootCmd.PersistentFlags().String(serviceFlag, "https://bsky.social", "PDS URL")
	rootCmd.PersistentFlags().String(handleFlag, "example.bsky.social", "Bluesky handle")
	rootCmd.PersistentFlags().String(passwordFlag, "", "Bluesky password, preferably an app password (prompted when empty)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return err
	}

	viper.AutomaticEnv()

	return rootCmd.Execute()
}
