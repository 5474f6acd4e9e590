// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/twison/internal/convert"
	"github.com/pdiddy/twison/internal/story"
)

var convertCmd = &cobra.Command{
	Use:   "convert [stories...]",
	Short: "Convert Twine story files to talk_topic JSON or YAML",
	Long: `Convert reads each Twine 2 HTML story and writes its passages as talk_topic
records. With --out-dir, each story becomes <out-dir>/<name>.json (or .yaml);
existing files are skipped unless --force is given. Without --out-dir, a single
story is written to stdout.

Passages named by a sentinel (TALK_DONE and TALK_NONE unless overridden with
--sentinel) are left out of the output.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("out-dir", "", "directory for converted files (default: stdout for a single story)")
	convertCmd.Flags().String("format", "", "output format: json or yaml (default json)")
	convertCmd.Flags().Bool("force", false, "overwrite existing output files")
	convertCmd.Flags().StringSlice("sentinel", nil, "passage ids to leave out of the output (repeatable)")

	viper.BindPFlag("convert.out_dir", convertCmd.Flags().Lookup("out-dir"))
	viper.BindPFlag("convert.format", convertCmd.Flags().Lookup("format"))
	viper.BindPFlag("convert.force", convertCmd.Flags().Lookup("force"))
	viper.BindPFlag("convert.sentinels", convertCmd.Flags().Lookup("sentinel"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("provide one or more story files")
	}

	cfg := loadConfig().Convert
	format, err := convert.ParseFormat(string(cfg.Format))
	if err != nil {
		return err
	}
	cfg.Format = format

	conv := convert.TwineConverter{
		Options: story.Options{Sentinels: cfg.Sentinels},
		Logger:  logger,
	}

	if cfg.OutDir == "" {
		if len(args) > 1 {
			return errors.New("--out-dir is required when converting more than one story")
		}
		return convert.ConvertTo(conv, args[0], cfg.Format, cmd.OutOrStdout())
	}

	result := convert.ConvertBatch(conv, args, cfg, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d story(s) failed conversion", result.Failed)
	}
	return nil
}
