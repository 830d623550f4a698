package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/xstore/internal/cliconfig"
	"github.com/bft-labs/xstore/pkg/log"
)

const helpDescription = `
Share one key-value store between applications served from different origins.

A hub owns the storage and decides, per origin, which operations are allowed.
Run one with "xstore hub", then read and write keys with the client commands.
Configure via file, env (XSTORE_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  xstore hub --listen :8787 --store sqlite --permissions permissions.toml --watch
  xstore set theme dark --hub-url ws://localhost:8787
  xstore get theme lang
  xstore keys
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the resolved configuration and logger to subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  zerolog.Logger
}

// load applies the config file, then XSTORE_* variables, keeping every flag
// the user set explicitly.
func (c *cli) load(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.logger = log.NewConsoleLogger(os.Stderr, log.ParseLevel(c.cfg.LogLevel))
	c.logger.Debug().Interface("config", c.cfg).Msg("configuration")
	return nil
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "xstore",
		Short:         "Cross-origin key-value storage hub and client",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.xstore/config.toml)")
	flags.StringVar(&c.cfg.Home, "home", c.cfg.Home, "directory for relative store and permissions paths")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.DurationVar(&c.cfg.Timeout, "timeout", c.cfg.Timeout, "connect and request timeout")

	root.AddCommand(newHubCommand(c))
	root.AddCommand(newClientCommands(c)...)
	return root
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig()}
	c.logger = log.NewConsoleLogger(os.Stderr, zerolog.InfoLevel)

	if err := newRootCommand(c).Execute(); err != nil {
		c.logger.Error().Err(err).Msg("xstore")
		os.Exit(1)
	}
}
