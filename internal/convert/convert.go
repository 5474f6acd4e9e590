// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs story files through a Converter and writes the
// resulting talk_topic records as JSON or YAML, one output file per story.
package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/twison/pkg/types"
)

// ErrUnsupportedFormat is returned for output formats other than json and yaml.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Converter turns one story file into passage records. The Twine reader
// implements it; tests substitute fakes.
type Converter interface {
	// Convert reads the story at path and returns its passages.
	Convert(path string) ([]types.Passage, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of stories processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any story failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ParseFormat validates an output format name. Empty means json.
func ParseFormat(name string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return types.OutputJSON, nil
	case types.OutputJSON, types.OutputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q: use json or yaml", ErrUnsupportedFormat, name)
	}
}

// Render encodes passages in the given format. JSON is indented by two
// spaces and does not escape HTML characters. Both formats end in a newline.
func Render(passages []types.Passage, format types.OutputFormat) ([]byte, error) {
	if passages == nil {
		passages = []types.Passage{}
	}

	switch format {
	case types.OutputJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(passages); err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return buf.Bytes(), nil
	case types.OutputYAML:
		data, err := yaml.Marshal(passages)
		if err != nil {
			return nil, fmt.Errorf("marshaling YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// OutputPath returns where ConvertFile writes the output for storyPath.
func OutputPath(storyPath string, cfg types.ConvertConfig) string {
	base := strings.TrimSuffix(filepath.Base(storyPath), filepath.Ext(storyPath))
	return filepath.Join(cfg.OutDir, base+cfg.Format.Extension())
}

// ConvertFile converts a single story and writes the result under
// cfg.OutDir, logging one status line to w. Existing output is left alone
// and reported as skipped unless cfg.Force is set.
func ConvertFile(c Converter, storyPath string, cfg types.ConvertConfig, w io.Writer) types.ConversionStatus {
	outPath := OutputPath(storyPath, cfg)
	base := filepath.Base(outPath)

	if !cfg.Force {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
			return types.ConversionNone
		}
	}

	passages, err := c.Convert(storyPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	data, err := Render(passages, cfg.Format)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	fmt.Fprintf(w, "converted: %s (%d passages)\n", base, len(passages))
	return types.ConversionDone
}

// ConvertBatch converts each story path in order, printing per-file status
// to w and returning a summary.
func ConvertBatch(c Converter, storyPaths []string, cfg types.ConvertConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range storyPaths {
		switch ConvertFile(c, p, cfg, w) {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertTo converts one story and writes the encoded result to out.
func ConvertTo(c Converter, storyPath string, format types.OutputFormat, out io.Writer) error {
	passages, err := c.Convert(storyPath)
	if err != nil {
		return err
	}
	data, err := Render(passages, format)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
