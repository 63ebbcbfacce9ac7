package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Persistent flags shared by every subcommand
const (
	FlagHome        = "home"
	FlagConfig      = "config"
	FlagLogLevel    = "log-level"
	FlagLogJSON     = "log-json"
	FlagMetricsPort = "metrics-port"

	// EnvPrefix prefixes environment overrides, e.g. COWAMM_LOG_LEVEL
	EnvPrefix = "COWAMM"
)

// DefaultHome is the default directory for config and data
var DefaultHome = defaultHome()

func defaultHome() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".cowamm"
	}
	return filepath.Join(userHome, ".cowamm")
}

// appContext is shared by the subcommands once the root pre-run has loaded config.
type appContext struct {
	viper  *viper.Viper
	home   string
	logger log.Logger
	config *Config
}

// NewRootCmd creates the root command for cowammd. It is called once in the
// main function.
func NewRootCmd() *cobra.Command {
	app := &appContext{viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "cowammd",
		Short: "CoW AMM order host",
		Long: `cowammd drives oracle-steered constant-product pools. It generates the
rebalancing order of a pool, verifies solver orders against the pool invariant,
and keeps one committed order per pool and trading period.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			return app.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(FlagHome, DefaultHome, "directory for config and data")
	flags.String(FlagConfig, "", "config file (default $home/config.yaml)")
	flags.String(FlagLogLevel, zerolog.InfoLevel.String(), "log level (trace|debug|info|warn|error)")
	flags.Bool(FlagLogJSON, false, "emit logs as JSON")
	flags.Int(FlagMetricsPort, 0, "serve Prometheus metrics on this port, 0 disables")

	rootCmd.AddCommand(
		GenerateCmd(app),
		VerifyCmd(app),
		CommitmentCmd(app),
		RunCmd(app),
	)

	return rootCmd
}

func (a *appContext) load(cmd *cobra.Command) error {
	v := a.viper
	if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	configureEnv(v)

	logger, err := newLogger(cmd.ErrOrStderr(), v.GetString(FlagLogLevel), v.GetBool(FlagLogJSON))
	if err != nil {
		return err
	}
	a.logger = logger.With("run_id", uuid.NewString())

	a.home = v.GetString(FlagHome)
	configPath := v.GetString(FlagConfig)
	if configPath == "" {
		configPath = filepath.Join(a.home, "config.yaml")
	}

	cfg, err := LoadConfig(v, configPath)
	if err != nil {
		return err
	}
	a.config = cfg

	a.logger.Debug("config loaded", "path", configPath, "pools", len(cfg.Pools))
	return nil
}

// configureEnv maps config keys to COWAMM_ variables, "params.commitment_mode" reads
// COWAMM_PARAMS_COMMITMENT_MODE
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(f.Name, f)
	})
	return err
}

func newLogger(out io.Writer, level string, jsonOutput bool) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := []log.Option{log.LevelOption(lvl), log.ColorOption(false)}
	if jsonOutput {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(out, opts...), nil
}

// openHost opens the persistent host for one command invocation.
func (a *appContext) openHost() (*Host, error) {
	return OpenHost(a.home, a.config, a.logger)
}
