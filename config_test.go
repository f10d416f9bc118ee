package csvstream

import (
	"errors"
	"testing"
)

func TestQuoteStyleText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want QuoteStyle
	}{
		{"necessary", QuoteNecessary},
		{"always", QuoteAlways},
		{"non_numeric", QuoteNonNumeric},
		{"Non-Numeric", QuoteNonNumeric},
		{"NEVER", QuoteNever},
	}
	for _, tc := range tests {
		var s QuoteStyle
		if err := s.UnmarshalText([]byte(tc.in)); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", tc.in, err)
		}
		if s != tc.want {
			t.Fatalf("UnmarshalText(%q) got %v want %v", tc.in, s, tc.want)
		}
	}

	var s QuoteStyle
	if err := s.UnmarshalText([]byte("sometimes")); !errors.Is(err, errInvalidConfig) {
		t.Fatalf("UnmarshalText(sometimes) err = %v", err)
	}
	if got := QuoteStyle(9).String(); got != "QuoteStyle(9)" {
		t.Fatalf("String() got %q", got)
	}
}

func TestTerminatorText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Terminator
		name string
	}{
		{"crlf", CRLF, "crlf"},
		{"CRLF", CRLF, "crlf"},
		{"lf", AnyTerminator('\n'), "lf"},
		{"\n", AnyTerminator('\n'), "lf"},
		{"cr", AnyTerminator('\r'), "cr"},
		{";", AnyTerminator(';'), ";"},
	}
	for _, tc := range tests {
		var term Terminator
		if err := term.UnmarshalText([]byte(tc.in)); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", tc.in, err)
		}
		if term != tc.want {
			t.Fatalf("UnmarshalText(%q) got %+v want %+v", tc.in, term, tc.want)
		}
		if got := term.String(); got != tc.name {
			t.Fatalf("String() got %q want %q", got, tc.name)
		}
	}

	var term Terminator
	if err := term.UnmarshalText([]byte("||")); !errors.Is(err, errInvalidConfig) {
		t.Fatalf("UnmarshalText(||) err = %v", err)
	}
	if !CRLF.IsCRLF() || AnyTerminator('\n').IsCRLF() {
		t.Fatalf("IsCRLF mismatch")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "default", mutate: func(*Config) {}, ok: true},
		{name: "quoteIsDelimiter", mutate: func(c *Config) { c.Quote = ',' }},
		{name: "terminatorIsDelimiter", mutate: func(c *Config) { c.Terminator = AnyTerminator(',') }},
		{name: "terminatorIsQuote", mutate: func(c *Config) { c.Terminator = AnyTerminator('"') }},
		{name: "crlfWithCommaDelimiter", mutate: func(c *Config) { c.Terminator = CRLF }, ok: true},
		{name: "escapeIsQuote", mutate: func(c *Config) { c.DoubleQuote = false; c.Escape = '"' }},
		{name: "escapeIsQuoteWhenDoubling", mutate: func(c *Config) { c.Escape = '"' }, ok: true},
		{name: "unknownStyle", mutate: func(c *Config) { c.QuoteStyle = 7 }},
		{name: "negativeCapacity", mutate: func(c *Config) { c.Capacity = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if !tc.ok && !errors.Is(err, errInvalidConfig) {
				t.Fatalf("Validate() got %v want errInvalidConfig", err)
			}
		})
	}
}
