// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"

	"github.com/spf13/viper"
)

// boundsCap is the hard ceiling on the [SX]_n repeat-count range; the
// scanner cost grows with the range width, and runs past 100 repeats do
// not occur in the source data.
const boundsCap = 100

// NCBIConfig is settings for the E-utilities client.
type NCBIConfig struct {
	// the NCBI API key raises the request-rate ceiling; optional
	APIKey string `mapstructure:"api-key"`

	// milliseconds slept between EFetch batches
	SleepMS int `mapstructure:"sleep-ms"`
}

// AnalysisConfig is settings for the motif scan.
type AnalysisConfig struct {
	// the smallest [SX]_n repeat count reported
	MinN int `mapstructure:"min-n"`

	// the largest repeat count searched for
	MaxN int `mapstructure:"max-n"`
}

// Bounds clamps the configured repeat-count range into [1, 100] and
// returns (minN, maxN) ready for the scanner, which itself rejects an
// inverted range.
func (a AnalysisConfig) Bounds() (int, int) {
	maxN := a.MaxN
	if maxN < 1 {
		maxN = 1
	}
	if maxN > boundsCap {
		maxN = boundsCap
	}
	minN := a.MinN
	if minN < 1 {
		minN = 1
	}
	if minN > maxN {
		minN = maxN
	}
	return minN, maxN
}

// TypeSetting maps one canonical protein type to the record-title
// substrings that identify it, in priority order.
type TypeSetting struct {
	Canonical string   `mapstructure:"canonical"`
	Aliases   []string `mapstructure:"aliases"`
}

// FetchConfig is settings for the NCBI crawl.
type FetchConfig struct {
	// default protein search terms when none are passed on the CLI
	Terms []string `mapstructure:"terms"`

	// canonical protein types and their title aliases
	TypeSettings []TypeSetting `mapstructure:"types"`
}

// Config is the root-level settings struct and is a mix of settings
// available in settings.yaml and those available from the command line.
type Config struct {
	// the record tree root
	Output string `mapstructure:"output"`

	Verbose bool `mapstructure:"verbose"`

	NCBI     NCBIConfig     `mapstructure:"ncbi"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
}

func setDefaults() {
	viper.SetDefault("output", "ncbi_sequences")
	viper.SetDefault("ncbi.sleep-ms", 200)
	viper.SetDefault("analysis.min-n", 2)
	viper.SetDefault("analysis.max-n", 50)
	viper.SetDefault("fetch.terms", []string{"fibroin"})
}

// New returns a new Config struct populated by Viper settings (either
// from the local settings.yaml) and/or command line arguments.
func New() *Config {
	setDefaults()

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		log.Fatalf("unable to decode into struct, %v", err)
	}

	if len(c.Fetch.TypeSettings) == 0 {
		c.Fetch.TypeSettings = []TypeSetting{
			{Canonical: "Heavy Chain", Aliases: []string{"heavy chain", "h-fibroin", "fibroin heavy"}},
			{Canonical: "Light Chain", Aliases: []string{"light chain", "l-fibroin", "fibroin light"}},
		}
	}
	return c
}
