package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vecdb/config"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	d := config.Default()

	rootCmd := &cobra.Command{
		Use:   "vecdb",
		Short: "Vector similarity search service",
		Long: `vecdb serves exact (flat) and approximate (HNSW) nearest-neighbor
search over HTTP.

Settings are read from flags, VECDB_* environment variables, a YAML config
file and built-in defaults, in that order of precedence.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("log-format", d.Log.Format, "Log format (text, json)")

	bindFlags(v, flags, map[string]string{
		"config":     "config",
		"log-level":  "log.level",
		"log-format": "log.format",
	})

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(v),
		newServeCmd(v),
	)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	return rootCmd
}

// normalizeFlagName makes --max_in_flight and --max-in-flight the same flag.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// bindFlags maps flag names to config keys.
func bindFlags(v *viper.Viper, f *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// loadConfig merges every configuration source.
func loadConfig(v *viper.Viper) (config.Config, error) {
	return config.Load(v, v.GetString("config"))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vecdb version %s\n", version)
		},
	}
}

func newConfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}
