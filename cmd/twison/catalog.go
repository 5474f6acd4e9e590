// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/twison/internal/catalog"
	"github.com/pdiddy/twison/internal/convert"
	"github.com/pdiddy/twison/internal/story"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index, search, check, and export converted topics",
	Long: `Catalog manages a local SQLite database of talk topics converted from
Twine stories. Use subcommands to index stories, search topics, report links
that point at missing passages, or export the catalog.`,
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store [stories...]",
	Short: "Convert stories and record their topics in the catalog",
	Long: `Store converts each story file and replaces its topics in the catalog.
Stories whose file and sentinel set have not changed since they were last
indexed are skipped. Use --force to re-index them anyway.`,
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("provide one or more story files")
	}

	cfg := loadConfig()
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	ids := sentinels(cmd, cfg.Convert.Sentinels)
	force, _ := cmd.Flags().GetBool("force")
	conv := convert.TwineConverter{
		Options: story.Options{Sentinels: ids},
		Logger:  logger,
	}

	opts := catalog.IngestOptions{Sentinels: ids, Force: force}
	summary, err := store.Ingest(cmd.Context(), args, conv.Load, opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d story(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search catalogued topics by text, tag, or story",
	Long: `Query lists topics whose dynamic line or response text contains the given
text, optionally narrowed by --tag and --story. With no text or filter it lists
the catalogued stories instead.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(loadConfig().Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		stories, err := store.Stories(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, stories)
		}
		return formatStories(out, stories)
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, results)
	}
	return formatTopics(out, results)
}

func formatStories(w io.Writer, stories []catalog.StorySummary) error {
	if len(stories) == 0 {
		fmt.Fprintln(w, "No stories catalogued.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-30s  %-20s  %s\n", "Story", "Name", "Format", "Topics")
	fmt.Fprintln(w, strings.Repeat("-", 82))
	for _, s := range stories {
		fmt.Fprintf(w, "%-20s  %-30s  %-20s  %d\n",
			truncate(s.ID, 20), truncate(s.Name, 30), truncate(s.Format, 20), s.Topics)
	}
	return nil
}

func formatTopics(w io.Writer, results []catalog.TopicResult) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-16s  %-24s  %-44s  %s\n", "#", "Story", "Topic", "Dynamic line", "Responses")
	fmt.Fprintln(w, strings.Repeat("-", 104))
	for i, r := range results {
		line := strings.ReplaceAll(r.DynamicLine, "\n", " ")
		fmt.Fprintf(w, "%-4d  %-16s  %-24s  %-44s  %d\n",
			i+1, truncate(r.Story, 16), truncate(r.ID, 24), truncate(line, 44), len(r.Responses))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// --- check subcommand ---

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report responses that link to passages missing from their story",
	Long: `Check resolves each response's link target (text->target, target<-text,
and text|target forms included) and reports those that name no topic in the
same story. Sentinel ids are never reported.`,
	RunE: runCatalogCheck,
}

func runCatalogCheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	refs, err := store.Dangling(cmd.Context(), sentinels(cmd, cfg.Convert.Sentinels))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if refs == nil {
			refs = []catalog.DanglingRef{}
		}
		if err := writeJSON(out, refs); err != nil {
			return err
		}
	} else {
		for _, r := range refs {
			fmt.Fprintf(out, "%s: %s -> %s (missing %s)\n", r.Story, r.From, r.Target, r.Resolved)
		}
	}

	if len(refs) > 0 {
		return fmt.Errorf("%d dangling reference(s)", len(refs))
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "No dangling references.")
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export catalogued topics to YAML or JSON",
	Long: `Export writes the catalogued topics (or a filtered subset) to stdout, or to
the file named by --output. Supports the same filter flags as query.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := catalog.NewStore(loadConfig().Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = store.ExportYAML(cmd.Context(), opts, w)
	case "json":
		err = store.ExportJSON(cmd.Context(), opts, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
	}
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	text, _ := cmd.Flags().GetString("text")
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	tag, _ := cmd.Flags().GetString("tag")
	storyID, _ := cmd.Flags().GetString("story")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Text:       text,
		Tag:        tag,
		Story:      storyID,
		MaxResults: limit,
	}
}

// sentinels returns the --sentinel flag when given, else the configured ids.
func sentinels(cmd *cobra.Command, configured []string) []string {
	if cmd.Flags().Changed("sentinel") {
		ids, _ := cmd.Flags().GetStringSlice("sentinel")
		return ids
	}
	return configured
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "", "directory holding topics.db (default catalog)")
	catalogCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (default 20)")
	catalogCmd.PersistentFlags().StringSlice("sentinel", nil, "passage ids treated as reserved (repeatable)")

	viper.BindPFlag("catalog.dir", catalogCmd.PersistentFlags().Lookup("catalog-dir"))
	viper.BindPFlag("catalog.max_results", catalogCmd.PersistentFlags().Lookup("max-results"))

	catalogStoreCmd.Flags().Bool("force", false, "re-index stories even when unchanged")

	// Query flags.
	catalogQueryCmd.Flags().String("text", "", "substring to match in dynamic lines and response text")
	catalogQueryCmd.Flags().String("tag", "", "filter by passage tag")
	catalogQueryCmd.Flags().String("story", "", "filter by story id")
	catalogQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	catalogCheckCmd.Flags().Bool("json", false, "output dangling references as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("output", "", "write to this file instead of stdout")
	catalogExportCmd.Flags().String("text", "", "text filter for partial export")
	catalogExportCmd.Flags().String("tag", "", "filter by tag for partial export")
	catalogExportCmd.Flags().String("story", "", "filter by story id for partial export")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
