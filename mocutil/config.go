// Package mocutil is the ambient command-line/configuration layer: a
// cobra.Command tree bound to a lnashier/viper.Viper instance, following an
// InitializeConfig/options-table pattern trimmed down to the six solver
// tunables this module exposes.
package mocutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is the build metadata printed by `mocrun version`.
const Version = "0.1.0"

// Config bundles the command tree with the bound configuration store.
type Config struct {
	*viper.Viper

	Root       *cobra.Command
	versionCmd *cobra.Command
	runCmd     *cobra.Command
}

// option describes one bindable tunable: name, usage string, and default
// value, bound onto a flag set by bindTunables.
type option struct {
	name       string
	usage      string
	defaultVal interface{}
}

// tunables are the six knobs the solver's run command exposes.
var tunables = []option{
	{name: "vector_length", usage: "SIMD vector width groups are padded to.", defaultVal: 8},
	{name: "vector_alignment", usage: "byte alignment target for per-group arrays.", defaultVal: 16},
	{name: "exponential_mode", usage: `exponential evaluator: "direct" or "interpolated".`, defaultVal: "interpolated"},
	{name: "max_iterations", usage: "power iteration cap.", defaultVal: 200},
	{name: "source_tolerance", usage: "source residual convergence tolerance.", defaultVal: 1e-5},
	{name: "thread_count", usage: "sweep worker-pool size; 0 means runtime.GOMAXPROCS(0).", defaultVal: 0},
}

// InitializeConfig builds the mocrun command tree: `run <geometry.toml>`
// and `version`, with the tunables bound as persistent flags on run.
func InitializeConfig() *Config {
	cfg := &Config{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "mocrun",
		Short: "A 2-D deterministic neutron transport solver.",
		Long: `mocrun solves the steady-state angular and scalar neutron flux distribution
and effective multiplication factor k_eff for a constructive-geometry
reactor cross-section, using the method of characteristics.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
	}

	cfg.versionCmd = &cobra.Command{
		Use:               "version",
		Short:             "Print the version number",
		Long:              "version prints the version number of this build of mocrun.",
		DisableAutoGenTag: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("mocrun v%s\n", Version)
		},
	}

	cfg.runCmd = &cobra.Command{
		Use:   "run <geometry.toml>",
		Short: "Run the solver against a geometry/material description.",
		Long: `run loads a geometry, material, and quadrature description from a TOML
file, traces tracks across it, and runs the power iteration to convergence.`,
		Args:              cobra.ExactArgs(1),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunFile(cfg, args[0], cmd.OutOrStdout())
		},
	}

	bindTunables(cfg, cfg.runCmd.PersistentFlags())

	cfg.Root.PersistentFlags().String("config", "", "path to a TOML file overriding the tunable defaults.")
	cfg.BindPFlag("config", cfg.Root.PersistentFlags().Lookup("config"))

	cfg.Root.AddCommand(cfg.versionCmd, cfg.runCmd)
	return cfg
}

// bindTunables registers each tunable on set and binds it into cfg's
// viper store, switching on defaultVal's type to pick the flag kind.
func bindTunables(cfg *Config, set *pflag.FlagSet) {
	for _, opt := range tunables {
		switch v := opt.defaultVal.(type) {
		case string:
			set.String(opt.name, v, opt.usage)
		case int:
			set.Int(opt.name, v, opt.usage)
		case float64:
			set.Float64(opt.name, v, opt.usage)
		default:
			panic(fmt.Sprintf("mocutil: unsupported tunable type %T for %q", v, opt.name))
		}
		cfg.BindPFlag(opt.name, set.Lookup(opt.name))
	}
}

// setConfig loads the --config file into the viper store, if one was
// given, overlaying it on the flag defaults.
func setConfig(cfg *Config) error {
	path := cfg.GetString("config")
	if path == "" {
		return nil
	}
	cfg.SetConfigFile(path)
	if err := cfg.ReadInConfig(); err != nil {
		return fmt.Errorf("mocrun: reading configuration file: %w", err)
	}
	return nil
}
