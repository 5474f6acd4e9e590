// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OutputFormat selects the encoding of converted stories.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Extension returns the file extension for the format, including the dot.
func (f OutputFormat) Extension() string {
	if f == OutputYAML {
		return ".yaml"
	}
	return ".json"
}

// DefaultSentinels are the topic ids the dialogue engine reserves for
// ending a conversation and staying on the current topic. Passages with
// these names never reach the output.
var DefaultSentinels = []string{"TALK_DONE", "TALK_NONE"}

// ConversionStatus indicates the outcome of converting one story file.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// ConvertConfig holds settings for the convert command.
type ConvertConfig struct {
	// OutDir is the directory for converted files. Empty writes to stdout.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Format selects json or yaml output (default json).
	Format OutputFormat `json:"format" yaml:"format"`

	// Force overwrites existing output files instead of skipping them.
	Force bool `json:"force" yaml:"force"`

	// Sentinels lists passage ids excluded from output (default DefaultSentinels).
	Sentinels []string `json:"sentinels" yaml:"sentinels"`
}

// CatalogConfig holds settings for the topic catalog.
type CatalogConfig struct {
	// Dir is the directory that holds topics.db and exports (default "catalog").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level"`

	// Encoding is console or json (default console).
	Encoding string `json:"encoding" yaml:"encoding"`
}

// Config groups all settings read from twison.yaml.
type Config struct {
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
