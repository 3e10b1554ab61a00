package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds processing settings. Environment variables provide the
// defaults; command-line flags override them.
type Config struct {
	// MaxLineBytes bounds a single trace line; longer lines are skipped.
	MaxLineBytes int `env:"V8LOG_MAX_LINE_BYTES" envDefault:"1048576"`
	// Parallelism is how many files are processed at once.
	Parallelism int `env:"V8LOG_PARALLELISM" envDefault:"4"`
	// Verbose enables debug logging.
	Verbose bool `env:"V8LOG_VERBOSE" envDefault:"false"`
	// MaxSpanEvents caps malformed-line events recorded per stream span.
	MaxSpanEvents int `env:"V8LOG_MAX_SPAN_EVENTS" envDefault:"100"`
	// Filter is an expression selecting the code records to report.
	Filter string `env:"V8LOG_FILTER"`
	// Attributes is a "name=expr;name=expr" list, see ParseAttributeString.
	Attributes string `env:"V8LOG_ATTRIBUTES"`
	// BaseTime is the wall-clock time of log timestamp zero (RFC 3339 or Unix seconds).
	BaseTime string `env:"V8LOG_BASE_TIME"`
}

// Default returns the configuration the struct tags define, ignoring the
// environment. It panics if a default does not parse.
func Default() *Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: invalid default: %v", err))
	}
	return &cfg
}

// CustomAttribute is a named expression evaluated for each reported code record.
type CustomAttribute struct {
	Name       string
	Expression string
}

// ParseEnv parses configuration from environment variables.
func ParseEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that numeric settings are usable.
func (c *Config) Validate() error {
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("max line bytes must be positive, got %d", c.MaxLineBytes)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got %d", c.Parallelism)
	}
	if c.MaxSpanEvents < 0 {
		return fmt.Errorf("max span events must not be negative, got %d", c.MaxSpanEvents)
	}
	return nil
}

// CustomAttributes parses the Attributes setting.
func (c *Config) CustomAttributes() ([]CustomAttribute, error) {
	return ParseAttributeString(c.Attributes)
}

// ParseAttributeString parses "name=expr;name=expr".
// Empty sections and a trailing semicolon are allowed. The expression is
// everything after the first '=', so it may itself contain '=='.
func ParseAttributeString(s string) ([]CustomAttribute, error) {
	var attrs []CustomAttribute
	for _, section := range strings.Split(s, ";") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		name, expression, ok := strings.Cut(section, "=")
		if !ok {
			return nil, fmt.Errorf("invalid attribute %q: expected name=expression", section)
		}
		name = strings.TrimSpace(name)
		expression = strings.TrimSpace(expression)
		if name == "" {
			return nil, fmt.Errorf("invalid attribute %q: empty name", section)
		}
		if expression == "" {
			return nil, fmt.Errorf("invalid attribute %q: empty expression", section)
		}

		attrs = append(attrs, CustomAttribute{Name: name, Expression: expression})
	}
	return attrs, nil
}
