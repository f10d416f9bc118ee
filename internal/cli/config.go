package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oleg578/csvstream"
)

// FileConfig is the on-disk form of the encoder settings. Unset fields keep
// their defaults.
type FileConfig struct {
	Input           string `yaml:"input"`
	Compress        string `yaml:"compress"`
	Delimiter       string `yaml:"delimiter"`
	Quote           string `yaml:"quote"`
	Escape          string `yaml:"escape"`
	QuoteStyle      string `yaml:"quote_style"`
	Terminator      string `yaml:"terminator"`
	DoubleQuote     *bool  `yaml:"double_quote"`
	Header          *bool  `yaml:"header"`
	Flexible        *bool  `yaml:"flexible"`
	ContinueOnError *bool  `yaml:"continue_on_error"`
	Capacity        int    `yaml:"capacity"`
}

// LoadFileConfig reads a FileConfig from path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// Apply copies the set fields of fc into cfg.
func (fc FileConfig) Apply(cfg *csvstream.Config) error {
	var err error
	if fc.Delimiter != "" {
		if cfg.Delimiter, err = parseByte("delimiter", fc.Delimiter); err != nil {
			return err
		}
	}
	if fc.Quote != "" {
		if cfg.Quote, err = parseByte("quote", fc.Quote); err != nil {
			return err
		}
	}
	if fc.Escape != "" {
		if cfg.Escape, err = parseByte("escape", fc.Escape); err != nil {
			return err
		}
	}
	if fc.QuoteStyle != "" {
		if err := cfg.QuoteStyle.UnmarshalText([]byte(fc.QuoteStyle)); err != nil {
			return err
		}
	}
	if fc.Terminator != "" {
		if err := cfg.Terminator.UnmarshalText([]byte(fc.Terminator)); err != nil {
			return err
		}
	}
	if fc.DoubleQuote != nil {
		cfg.DoubleQuote = *fc.DoubleQuote
	}
	if fc.Header != nil {
		cfg.HasHeaders = *fc.Header
	}
	if fc.Flexible != nil {
		cfg.Flexible = *fc.Flexible
	}
	if fc.Capacity != 0 {
		cfg.Capacity = fc.Capacity
	}
	return nil
}

// parseByte accepts a single byte or one of the names "tab", "\t", "space".
func parseByte(flag, s string) (byte, error) {
	switch s {
	case "tab", `\t`, "\t":
		return '\t', nil
	case "space":
		return ' ', nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%s must be a single byte, got %q", flag, s)
	}
	return s[0], nil
}
