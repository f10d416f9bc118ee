package csvstream

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/oleg578/csvstream/internal/fieldenc"
)

// DefaultCapacity is the initial capacity of buffers the adapters allocate.
const DefaultCapacity = 8 << 10 // 8 KiB

// QuoteStyle selects when fields are quoted.
type QuoteStyle uint8

const (
	// QuoteNecessary quotes fields that contain a quote, the delimiter or a
	// record terminator, and the lone field of an otherwise empty record.
	QuoteNecessary QuoteStyle = iota
	// QuoteAlways quotes every field.
	QuoteAlways
	// QuoteNonNumeric quotes every field that is not an integer or float.
	QuoteNonNumeric
	// QuoteNever never quotes, even when the output becomes ambiguous.
	QuoteNever
)

var quoteStyleNames = map[QuoteStyle]string{
	QuoteNecessary:  "necessary",
	QuoteAlways:     "always",
	QuoteNonNumeric: "non_numeric",
	QuoteNever:      "never",
}

func (s QuoteStyle) String() string {
	if name, ok := quoteStyleNames[s]; ok {
		return name
	}
	return "QuoteStyle(" + strconv.Itoa(int(s)) + ")"
}

// UnmarshalText parses the names returned by String.
func (s *QuoteStyle) UnmarshalText(text []byte) error {
	name := strings.ReplaceAll(strings.ToLower(string(text)), "-", "_")
	for style, n := range quoteStyleNames {
		if n == name {
			*s = style
			return nil
		}
	}
	return fmt.Errorf("%w: unknown quote style %q", errInvalidConfig, text)
}

// Terminator is the byte sequence ending each record.
type Terminator struct {
	b    byte
	crlf bool
}

// CRLF terminates records with "\r\n".
var CRLF = Terminator{crlf: true}

// AnyTerminator terminates records with b.
func AnyTerminator(b byte) Terminator { return Terminator{b: b} }

// IsCRLF reports whether t is CRLF.
func (t Terminator) IsCRLF() bool { return t.crlf }

// Byte returns the terminator byte; it is meaningless for CRLF.
func (t Terminator) Byte() byte { return t.b }

func (t Terminator) String() string {
	switch {
	case t.crlf:
		return "crlf"
	case t.b == '\n':
		return "lf"
	case t.b == '\r':
		return "cr"
	default:
		return string([]byte{t.b})
	}
}

// UnmarshalText accepts "crlf", "lf", "cr" or a single byte.
func (t *Terminator) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "crlf", "\r\n":
		*t = CRLF
	case "lf", "\n":
		*t = AnyTerminator('\n')
	case "cr", "\r":
		*t = AnyTerminator('\r')
	default:
		if len(text) != 1 {
			return fmt.Errorf("%w: terminator must be crlf, lf, cr or a single byte, got %q", errInvalidConfig, text)
		}
		*t = AnyTerminator(text[0])
	}
	return nil
}

// Config holds the encoding options of a Writer. A Writer copies its Config
// when it is built, so later changes to the Config have no effect on it.
type Config struct {
	// Delimiter separates fields. Default is ','.
	Delimiter byte
	// Quote wraps fields that need quoting. Default is '"'.
	Quote byte
	// Escape precedes quotes inside quoted fields when DoubleQuote is off.
	// Default is '\\'.
	Escape byte
	// QuoteStyle decides which fields are quoted.
	QuoteStyle QuoteStyle
	// Terminator ends each record. Default is "\n".
	Terminator Terminator
	// DoubleQuote escapes quotes by doubling them. Default is true.
	DoubleQuote bool
	// HasHeaders writes a header row inferred from the first serialized
	// value. Default is true.
	HasHeaders bool
	// Flexible allows records of differing lengths.
	Flexible bool
	// Capacity sizes the buffers allocated by the sequence adapters.
	Capacity int
	// Logger receives debug output. Default is a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Delimiter:   ',',
		Quote:       '"',
		Escape:      '\\',
		QuoteStyle:  QuoteNecessary,
		Terminator:  AnyTerminator('\n'),
		DoubleQuote: true,
		HasHeaders:  true,
		Capacity:    DefaultCapacity,
	}
}

// Validate reports configurations that cannot be encoded unambiguously.
func (c Config) Validate() error {
	if c.Quote == c.Delimiter {
		return fmt.Errorf("%w: quote and delimiter are both %q", errInvalidConfig, c.Quote)
	}
	if !c.Terminator.crlf {
		if c.Terminator.b == c.Delimiter {
			return fmt.Errorf("%w: delimiter and terminator are both %q", errInvalidConfig, c.Delimiter)
		}
		if c.Terminator.b == c.Quote {
			return fmt.Errorf("%w: quote and terminator are both %q", errInvalidConfig, c.Quote)
		}
	}
	if !c.DoubleQuote && c.Escape == c.Quote {
		return fmt.Errorf("%w: escape must differ from quote when double quoting is off", errInvalidConfig)
	}
	if _, ok := quoteStyleNames[c.QuoteStyle]; !ok {
		return fmt.Errorf("%w: unknown quote style %d", errInvalidConfig, c.QuoteStyle)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", errInvalidConfig, c.Capacity)
	}
	return nil
}

// Build validates c and returns a Writer configured by it.
func (c Config) Build() (*Writer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return newWriter(c), nil
}

func (c Config) encoderOptions() fieldenc.Options {
	return fieldenc.Options{
		Delimiter:   c.Delimiter,
		Quote:       c.Quote,
		Escape:      c.Escape,
		Style:       fieldenc.QuoteStyle(c.QuoteStyle),
		CRLF:        c.Terminator.crlf,
		Term:        c.Terminator.b,
		DoubleQuote: c.DoubleQuote,
	}
}

// Option adjusts a Config.
type Option func(*Config)

// WithDelimiter sets the field delimiter.
func WithDelimiter(delimiter byte) Option {
	return func(c *Config) { c.Delimiter = delimiter }
}

// WithQuote sets the quote character.
func WithQuote(quote byte) Option {
	return func(c *Config) { c.Quote = quote }
}

// WithEscape sets the escape character used when double quoting is off.
func WithEscape(escape byte) Option {
	return func(c *Config) { c.Escape = escape }
}

// WithQuoteStyle sets the quoting style.
func WithQuoteStyle(style QuoteStyle) Option {
	return func(c *Config) { c.QuoteStyle = style }
}

// WithTerminator sets the record terminator.
func WithTerminator(t Terminator) Option {
	return func(c *Config) { c.Terminator = t }
}

// WithDoubleQuote toggles escaping quotes by doubling them.
func WithDoubleQuote(yes bool) Option {
	return func(c *Config) { c.DoubleQuote = yes }
}

// WithHeaders toggles header inference on the first serialized value.
func WithHeaders(yes bool) Option {
	return func(c *Config) { c.HasHeaders = yes }
}

// WithFlexible toggles acceptance of records with differing lengths.
func WithFlexible(yes bool) Option {
	return func(c *Config) { c.Flexible = yes }
}

// WithCapacity sets the capacity of adapter-allocated buffers.
func WithCapacity(n int) Option {
	return func(c *Config) { c.Capacity = n }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
