package main

import (
	"github.com/spf13/cobra"

	"github.com/KOMKZ/go-yogan-binding/di"
	"github.com/KOMKZ/go-yogan-binding/telemetry"
)

// rootOptions persistent flags shared by every subcommand
type rootOptions struct {
	configDir string
	envPrefix string
	env       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "bindctl",
		Short:        "Inspect and exercise binding graphs",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "configs", "directory holding config.yaml and <env>.yaml")
	flags.StringVar(&opts.envPrefix, "env-prefix", "BINDCTL", "environment variable prefix")
	flags.StringVar(&opts.env, "env", "", "environment name (default $APP_ENV, then $ENV, then dev)")

	cmd.AddCommand(
		newGraphCmd(),
		newResolveCmd(opts),
	)
	return cmd
}

// newEngine builds the engine from the persistent flags. Metrics exported
// to stdout go to the command's output.
func (o *rootOptions) newEngine(cmd *cobra.Command) (*di.Engine, error) {
	return di.NewEngine(
		di.WithConfigPath(o.configDir),
		di.WithEnvPrefix(o.envPrefix),
		di.WithEnv(o.env),
		di.WithLoggerModule("bindctl"),
		di.WithMetricsOptions(telemetry.WithWriter(cmd.OutOrStdout())),
	)
}
