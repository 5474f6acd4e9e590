// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the twison CLI, which converts Twine
// story exports into talk_topic dialogue files and maintains a searchable
// catalog of the converted topics.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/twison/internal/logging"
	"github.com/pdiddy/twison/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the log.* settings before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the twison CLI.
var rootCmd = &cobra.Command{
	Use:   "twison",
	Short: "Convert Twine stories into talk_topic dialogue JSON",
	Long: `twison reads Twine 2 story exports (published HTML) and converts each
passage into a talk_topic record: the narrator's dynamic line followed by the
player responses, one per [[link]], with any {{key}}...{{/key}} blocks on the
link's line attached as effect, condition, or prop.

Use convert to produce dialogue files, catalog to index and search converted
topics across stories, and schema to print the JSON Schema of the output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./twison.yaml or ~/.config/twison/twison.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().String("log-encoding", "", "log encoding: console or json (default console)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.encoding", rootCmd.PersistentFlags().Lookup("log-encoding"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("twison")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "twison"))
		}
	}

	viper.SetDefault("convert.format", string(types.OutputJSON))
	viper.SetDefault("convert.sentinels", types.DefaultSentinels)
	viper.SetDefault("catalog.dir", "catalog")
	viper.SetDefault("catalog.max_results", 20)

	viper.SetEnvPrefix("TWISON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

// loadConfig assembles the effective configuration from flags, environment,
// config file, and defaults, in that order of precedence.
func loadConfig() types.Config {
	return types.Config{
		Convert: types.ConvertConfig{
			OutDir:    viper.GetString("convert.out_dir"),
			Format:    types.OutputFormat(viper.GetString("convert.format")),
			Force:     viper.GetBool("convert.force"),
			Sentinels: viper.GetStringSlice("convert.sentinels"),
		},
		Catalog: types.CatalogConfig{
			Dir:        viper.GetString("catalog.dir"),
			MaxResults: viper.GetInt("catalog.max_results"),
		},
		Log: types.LogConfig{
			Level:    viper.GetString("log.level"),
			Encoding: viper.GetString("log.encoding"),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
